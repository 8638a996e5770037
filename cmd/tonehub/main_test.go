package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tonehub/internal/api"
	"tonehub/internal/preview"
	"tonehub/internal/services"
	"tonehub/internal/testsupport"
)

func TestSearchCommandFilters(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "search")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	requireContains(t, out, "JCM800")
	requireContains(t, out, "5 matches")

	out, _, err = runCLI(t, env, "search", "--type", "NAM")
	if err != nil {
		t.Fatalf("search --type: %v", err)
	}
	requireContains(t, out, "5150 Lead")
	requireContains(t, out, "Plexi Crunch")
	requireNotContains(t, out, "JCM800")

	out, _, err = runCLI(t, env, "list", "--brand", "Marshall", "CLEAN")
	if err != nil {
		t.Fatalf("list --brand: %v", err)
	}
	requireContains(t, out, "JCM800")
	requireNotContains(t, out, "Plexi Crunch")
	requireContains(t, out, "1 matches")

	out, _, err = runCLI(t, env, "search", "no-such-amp")
	if err != nil {
		t.Fatalf("search miss: %v", err)
	}
	requireContains(t, out, "No items match.")
}

func TestSearchCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "--json", "search", "--type", "all", "--brand", "Fender")
	if err != nil {
		t.Fatalf("search --json: %v", err)
	}
	var res api.ItemListResponse
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if res.Total != 1 || len(res.Items) != 1 || res.Items[0].Name != "Deluxe Reverb" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Truncated || res.Limit != 300 {
		t.Fatalf("unexpected bound fields: %+v", res)
	}
}

func TestShowCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "show", "3")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "Deluxe Reverb (#3)")
	requireContains(t, out, "Tags:        clean, combo")
	requireContains(t, out, "Previewable: yes")

	out, _, err = runCLI(t, env, "show", "2")
	if err != nil {
		t.Fatalf("show remote: %v", err)
	}
	requireContains(t, out, "Previewable: no")

	_, _, err = runCLI(t, env, "show", "99")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStatsAndPacksCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	requireContains(t, out, "5 items")
	requireContains(t, out, "Marshall")

	out, _, err = runCLI(t, env, "--json", "stats")
	if err != nil {
		t.Fatalf("stats --json: %v", err)
	}
	var stats api.StatsResponse
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 5 || stats.Brands[0].Key != "Marshall" || stats.Brands[0].Count != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	out, _, err = runCLI(t, env, "--json", "packs", "--limit", "2")
	if err != nil {
		t.Fatalf("packs: %v", err)
	}
	var packs api.PackListResponse
	if err := json.Unmarshal([]byte(out), &packs); err != nil {
		t.Fatalf("decode packs: %v", err)
	}
	if len(packs.Packs) == 0 {
		t.Fatal("expected default packs")
	}
	for _, p := range packs.Packs {
		if len(p.Items) > 2 {
			t.Fatalf("pack %q exceeds limit: %d", p.Name, len(p.Items))
		}
	}
}

func TestDownloadRequiresUnlock(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "download", "3")
	if err != nil {
		t.Fatalf("locked download: %v", err)
	}
	requireContains(t, out, "Unlock downloads")
	if _, err := os.Stat(filepath.Join(env.downloadDir, "deluxe.wav")); !os.IsNotExist(err) {
		t.Fatalf("locked download must not write, stat err=%v", err)
	}

	_, _, err = runCLI(t, env, "unlock", "wrong-key")
	if err == nil || !strings.Contains(err.Error(), "That key is not valid") {
		t.Fatalf("expected invalid key error, got %v", err)
	}

	out, _, err = runCLI(t, env, "unlock", "  TONE-PRO-2026 ")
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	requireContains(t, out, "Downloads unlocked.")

	out, _, err = runCLI(t, env, "download", "3")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	requireContains(t, out, "Saved ")
	requireContains(t, out, "sha256:")
	data, err := os.ReadFile(filepath.Join(env.downloadDir, "deluxe.wav"))
	if err != nil {
		t.Fatalf("read download: %v", err)
	}
	if len(data) != len(testsupport.TinyWAV()) {
		t.Fatalf("unexpected download size %d", len(data))
	}

	out, _, err = runCLI(t, env, "--json", "download", "2")
	if err != nil {
		t.Fatalf("remote download: %v", err)
	}
	var res api.DownloadResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode download: %v", err)
	}
	if res.Action != "clipboard" || !strings.HasPrefix(res.Command, "rclone copy") {
		t.Fatalf("unexpected remote result: %+v", res)
	}
	if lines := env.clipboard.snapshot(); len(lines) != 1 || lines[0] != res.Command {
		t.Fatalf("expected clipboard write, got %v", lines)
	}

	out, _, err = runCLI(t, env, "unlock", "anything")
	if err != nil {
		t.Fatalf("unlock while unlocked: %v", err)
	}
	requireContains(t, out, "already unlocked")
}

func TestEphemeralUnlockDoesNotPersist(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, env, "--ephemeral", "unlock", "tone-pro-2026"); err != nil {
		t.Fatalf("ephemeral unlock: %v", err)
	}
	out, _, err := runCLI(t, env, "--json", "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var report statusReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if report.Entitlement.Authorized {
		t.Fatal("ephemeral unlock leaked into the state store")
	}
}

func TestConfirmPaymentUnlocks(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, env, "confirm-payment"); err == nil {
		t.Fatal("expected --payer to be required")
	}
	out, _, err := runCLI(t, env, "--json", "confirm-payment", "--payer", "Ada", "--order", "ord-1")
	if err != nil {
		t.Fatalf("confirm-payment: %v", err)
	}
	var status api.EntitlementStatus
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Authorized || status.State != "unlocked" {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestPreviewCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "preview", "1")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	requireContains(t, out, "Loading JCM800...")
	requireContains(t, out, "Playing JCM800")
	requireContains(t, out, "Preview finished.")

	_, _, err = runCLI(t, env, "preview", "2")
	if !errors.Is(err, preview.ErrNotPreviewable) {
		t.Fatalf("expected not previewable, got %v", err)
	}

	_, _, err = runCLI(t, env, "preview", "4")
	if !errors.Is(err, preview.ErrDecodeFailed) {
		t.Fatalf("expected decode failure, got %v", err)
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "✓ 5 items")
	requireContains(t, out, "! Locked")
	requireContains(t, out, "Audio preview:")
	requireContains(t, out, "Copy rclone command to clipboard")
}
