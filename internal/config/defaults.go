package config

const (
	defaultStateDir            = "~/.local/share/tonehub"
	defaultDownloadDir         = "~/Downloads/tonehub"
	defaultLogDir              = "~/.local/share/tonehub/logs"
	defaultCatalogSource       = "~/.local/share/tonehub/catalog.json"
	defaultRetainRuns          = 10
	defaultUserAgent           = "tonehub/dev"
	defaultMaxResults          = 300
	maxMaxResults              = 500
	defaultFallbackType        = "NAM"
	defaultUnlockKey           = "tone-pro-2026"
	defaultEntitlementKey      = "tonehub.entitlement.authorized"
	defaultSampleRate          = 48000
	defaultBurstHz             = 110
	defaultBurstMillis         = 500
	defaultAttackMillis        = 5
	defaultMaxTailMillis       = 1500
	defaultLowpassHz           = 5000
	defaultOutputPeak          = 0.8
	defaultMaxFetchBytes       = 32 << 20
	defaultRemoteStrategy      = RemoteStrategyClipboard
	defaultRcloneRemote        = "gdrive2:IR_DEF_REPOSITORY"
	defaultSearchURL           = "https://drive.google.com/drive/search"
	defaultDownloadTimeout     = 300
	defaultMinFreeMiB          = 64
	defaultServerBind          = "127.0.0.1:7488"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultCatalogTimeoutSecs  = 0
	defaultPreviewFetchTimeout = 0
)

// Remote-storage transfer strategies.
const (
	RemoteStrategyClipboard = "clipboard"
	RemoteStrategySearch    = "search"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:    defaultStateDir,
			DownloadDir: defaultDownloadDir,
			LogDir:      defaultLogDir,
		},
		Catalog: Catalog{
			Source:         defaultCatalogSource,
			TimeoutSeconds: defaultCatalogTimeoutSecs,
			UserAgent:      defaultUserAgent,
		},
		Filter: Filter{
			MaxResults:         defaultMaxResults,
			FallbackType:       defaultFallbackType,
			FallbackExtensions: []string{".nam"},
		},
		Entitlement: Entitlement{
			UnlockKey:  defaultUnlockKey,
			StorageKey: defaultEntitlementKey,
		},
		Preview: Preview{
			Enabled:             true,
			SampleRate:          defaultSampleRate,
			BurstHz:             defaultBurstHz,
			BurstMillis:         defaultBurstMillis,
			AttackMillis:        defaultAttackMillis,
			MaxTailMillis:       defaultMaxTailMillis,
			LowpassHz:           defaultLowpassHz,
			OutputPeak:          defaultOutputPeak,
			PreviewableTypes:    []string{"IR"},
			FetchTimeoutSeconds: defaultPreviewFetchTimeout,
			MaxFetchBytes:       defaultMaxFetchBytes,
		},
		Download: Download{
			RemoteStrategy: defaultRemoteStrategy,
			RcloneRemote:   defaultRcloneRemote,
			SearchURL:      defaultSearchURL,
			TimeoutSeconds: defaultDownloadTimeout,
			MinFreeMiB:     defaultMinFreeMiB,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			RetainRuns: defaultRetainRuns,
		},
		Packs: DefaultPacks(),
	}
}

// DefaultPacks returns the stock curated collections.
func DefaultPacks() []Pack {
	return []Pack{
		{
			Name:        "Modern Metal Starter Pack",
			Description: "High-gain monsters: 5150s, Rectifiers, ENGLs, Diezels, and their matching cabs.",
			Keywords:    []string{"5150", "evh", "rectifier", "mesa", "engl", "diezel", "v30", "ts9", "fortin", "revv", "peavey"},
		},
		{
			Name:        "Classic Rock Legends",
			Description: "Marshall stacks, Vox chime, and vintage crunch.",
			Keywords:    []string{"marshall", "plexi", "jcm800", "jcm900", "greenback", "creamback", "ac30", "vox", "superlead", "jtm"},
		},
		{
			Name:        "Pristine Clean Ambient",
			Description: "Clean platforms for ambient, worship, and studio recording.",
			Keywords:    []string{"fender", "twin reverb", "deluxe reverb", "jc120", "roland", "matchless", "lonestar", "princeton", "jazz chorus"},
		},
		{
			Name:        "Bass Foundations",
			Description: "Ampeg SVTs, Darkglass crunch, and vintage bass warmth.",
			Keywords:    []string{"ampeg", "svt", "darkglass", "b7k", "sansamp", "gallien", "bass", "trace elliot", "b15"},
		},
		{
			Name:        "Boutique Premium Collection",
			Description: "Friedman, Bogner, Soldano, and other boutique captures.",
			Keywords:    []string{"bogner", "friedman", "soldano", "two rock", "dumble", "matchless", "divided", "suhr", "morgan", "tone king"},
		},
		{
			Name:        "Pedals and Overdrives",
			Description: "Tube Screamers, Klon, RAT, Big Muff, and beyond.",
			Keywords:    []string{"pedal", "overdrive", "distortion", "fuzz", "boost", "screamer", "klon", "rat", "muff", "drive", "stomp"},
		},
	}
}
