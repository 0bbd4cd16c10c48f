package audio

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Clip is a transient audio file holding one synthesized segment.
type Clip struct {
	// Index is the segment's position in the script.
	Index int
	Path  string
}

// Assembler joins ordered clips into one output file.
type Assembler struct {
	ffmpeg string
	logger *slog.Logger
}

// NewAssembler creates an Assembler that runs the given ffmpeg executable.
func NewAssembler(ffmpeg string, logger *slog.Logger) (*Assembler, error) {
	if logger == nil {
		return nil, ErrNilLogger
	}
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return &Assembler{ffmpeg: ffmpeg, logger: logger.With("component", "audio_assembler")}, nil
}

// Assemble writes clips, in order, to outPath. A single clip is moved into
// place untouched; several are joined with ffmpeg's concat demuxer and
// "-c copy". Every clip and the concat list are deleted whatever the
// outcome, and a partial outPath is removed on failure.
func (a *Assembler) Assemble(ctx context.Context, clips []Clip, outPath string) (err error) {
	defer RemoveClips(a.logger, clips)

	if len(clips) == 0 {
		return ErrNoClips
	}

	if len(clips) == 1 {
		if err := os.Rename(clips[0].Path, outPath); err != nil {
			return fmt.Errorf("%w: move clip: %v", ErrAssembly, err)
		}
		return nil
	}

	listPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".txt"
	defer removeQuietly(a.logger, listPath)

	if err := writeConcatList(listPath, clips); err != nil {
		return fmt.Errorf("%w: write concat list: %v", ErrAssembly, err)
	}

	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if runErr := cmd.Run(); runErr != nil {
		removeQuietly(a.logger, outPath)
		a.logger.Error("ffmpeg concat failed",
			"error", runErr,
			"clips", len(clips),
			"stderr", strings.TrimSpace(stderr.String()))
		return fmt.Errorf("%w: ffmpeg: %v", ErrAssembly, runErr)
	}

	a.logger.Debug("assembled clips", "clips", len(clips), "output", filepath.Base(outPath))
	return nil
}

// writeConcatList writes the ffmpeg concat demuxer input.
func writeConcatList(path string, clips []Clip) error {
	var b strings.Builder
	for _, c := range clips {
		abs, err := filepath.Abs(c.Path)
		if err != nil {
			return err
		}
		// Single quotes inside a quoted path are written as '\''.
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(filepath.ToSlash(abs), "'", `'\''`))
	}
	return os.WriteFile(path, []byte(b.String()), 0o600)
}

// RemoveClips deletes every clip file, ignoring ones already gone.
func RemoveClips(logger *slog.Logger, clips []Clip) {
	for _, c := range clips {
		removeQuietly(logger, c.Path)
	}
}

func removeQuietly(logger *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove temporary audio file", "file", filepath.Base(path), "error", err)
	}
}
