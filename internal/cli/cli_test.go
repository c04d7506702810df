// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"
)

func TestParseClassify(t *testing.T) {
	cmd, args := Parse([]string{"classify", "I", "need", "a", "refund"})
	if cmd != CmdClassify {
		t.Fatalf("cmd = %v, want CmdClassify", cmd)
	}
	if args.Query != "I need a refund" {
		t.Errorf("query = %q", args.Query)
	}
}

func TestParseBareQueryDefaultsToClassify(t *testing.T) {
	cmd, args := Parse([]string{"my", "payment", "failed"})
	if cmd != CmdClassify {
		t.Fatalf("cmd = %v, want CmdClassify", cmd)
	}
	if args.Query != "my payment failed" {
		t.Errorf("query = %q", args.Query)
	}
}

func TestParseGlobalFlags(t *testing.T) {
	cmd, args := Parse([]string{"--json", "--no-llm", "-v", "classify", "help", "me"})
	if cmd != CmdClassify {
		t.Fatalf("cmd = %v", cmd)
	}
	if !args.JSON || !args.NoLLM || !args.Verbose {
		t.Errorf("flags not parsed: %+v", args)
	}
	if args.Query != "help me" {
		t.Errorf("query = %q", args.Query)
	}
}

func TestParseConfigFlag(t *testing.T) {
	_, args := Parse([]string{"--config", "/tmp/x.toml", "classify", "hello", "there"})
	if args.ConfigPath != "/tmp/x.toml" {
		t.Errorf("config path = %q", args.ConfigPath)
	}

	_, args = Parse([]string{"--config=/tmp/y.toml", "version"})
	if args.ConfigPath != "/tmp/y.toml" {
		t.Errorf("config path = %q", args.ConfigPath)
	}
}

func TestParseBatch(t *testing.T) {
	cmd, args := Parse([]string{"batch", "--file", "queries.txt"})
	if cmd != CmdBatch {
		t.Fatalf("cmd = %v, want CmdBatch", cmd)
	}
	if args.File != "queries.txt" {
		t.Errorf("file = %q", args.File)
	}

	_, args = Parse([]string{"batch", "--file=inbox.txt"})
	if args.File != "inbox.txt" {
		t.Errorf("file = %q", args.File)
	}
}

func TestParseServe(t *testing.T) {
	cmd, args := Parse([]string{"serve", "--port", "9000"})
	if cmd != CmdServe {
		t.Fatalf("cmd = %v, want CmdServe", cmd)
	}
	if args.Port != 9000 {
		t.Errorf("port = %d", args.Port)
	}

	_, args = Parse([]string{"serve", "--port=abc"})
	if args.Port != 0 {
		t.Errorf("bad port must be ignored, got %d", args.Port)
	}
}

func TestParseConfigCommand(t *testing.T) {
	cmd, args := Parse([]string{"config", "show"})
	if cmd != CmdConfig {
		t.Fatalf("cmd = %v, want CmdConfig", cmd)
	}
	if args.Subcommand != "show" {
		t.Errorf("subcommand = %q", args.Subcommand)
	}
}

func TestParseVersionAndHelp(t *testing.T) {
	if cmd, _ := Parse([]string{"version"}); cmd != CmdVersion {
		t.Errorf("version cmd = %v", cmd)
	}
	if cmd, _ := Parse([]string{"--version"}); cmd != CmdVersion {
		t.Errorf("--version cmd = %v", cmd)
	}
	if cmd, _ := Parse([]string{"help"}); cmd != CmdHelp {
		t.Errorf("help cmd = %v", cmd)
	}
	if cmd, _ := Parse(nil); cmd != CmdHelp {
		t.Errorf("empty args cmd = %v", cmd)
	}
}
