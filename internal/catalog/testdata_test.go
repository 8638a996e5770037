package catalog

const scenarioCatalog = `{
  "items": [
    {"id": 1, "n": "JCM800", "b": "Marshall", "t": "IR", "p": "https://x/a.wav", "tag": ["clean"]},
    {"id": 2, "n": "5150 Lead", "b": "EVH", "t": "NAM", "p": "rclone:/amps/5150.nam", "tag": ["high-gain"]},
    {"id": 3, "n": "Deluxe Reverb", "b": "Fender", "t": "IR", "p": "https://x/b.wav", "tag": ["clean", "combo"]}
  ],
  "stats": {"types": {"IR": 2, "NAM": 1}, "brands": {"Marshall": 1, "EVH": 1, "Fender": 1}}
}`
