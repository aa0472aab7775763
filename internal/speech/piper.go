package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// PiperConfig holds configuration for the local Piper backend.
type PiperConfig struct {
	BinPath string // default: "piper"
	// Models maps a language tag to a .onnx voice model. The "" entry is
	// used for languages without their own model.
	Models map[string]string
}

// Piper synthesizes speech by piping text through the piper binary.
type Piper struct {
	cfg PiperConfig
}

func NewPiper(cfg PiperConfig) *Piper {
	if cfg.BinPath == "" {
		cfg.BinPath = "piper"
	}
	return &Piper{cfg: cfg}
}

func (p *Piper) Name() string { return "local-piper" }

func (p *Piper) model(lang string) (string, bool) {
	if m, ok := p.cfg.Models[lang]; ok && m != "" {
		return m, true
	}
	m, ok := p.cfg.Models[""]
	return m, ok && m != ""
}

// Synthesize returns raw WAV audio from piper's stdout.
func (p *Piper) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	model, ok := p.model(req.Language)
	if !ok {
		return nil, fmt.Errorf("no piper voice model for language %q (set TTS_PIPER_MODEL)", req.Language)
	}

	cmd := exec.CommandContext(ctx, p.cfg.BinPath, "--model", model, "--output-raw")
	cmd.Stdin = strings.NewReader(req.Input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("piper failed: %w (stderr: %s)", err, stderr.String())
	}

	return &SynthesisResult{Audio: stdout.Bytes(), ContentType: "audio/wav"}, nil
}
