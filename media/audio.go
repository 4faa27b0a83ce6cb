package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// ffmpegLocations are probed in order; runtime layers install the binary
// under /opt/bin, local checkouts under ./bin, and the system path is the
// last resort.
var ffmpegLocations = []string{"/opt/bin/ffmpeg", "./bin/ffmpeg"}

// FFmpegExtractor extracts 16kHz mono WAV audio from a media file by
// shelling out to ffmpeg
type FFmpegExtractor struct {
	binary string
}

// NewFFmpegExtractor creates an extractor, probing the known ffmpeg locations
func NewFFmpegExtractor() *FFmpegExtractor {
	binary := "ffmpeg"
	for _, candidate := range ffmpegLocations {
		if _, err := os.Stat(candidate); err == nil {
			binary = candidate
			break
		}
	}
	return &FFmpegExtractor{binary: binary}
}

// Extract transcodes videoPath's audio track into a 16kHz mono WAV at
// audioPath, the input format the audio-event classifier expects
func (e *FFmpegExtractor) Extract(ctx context.Context, videoPath, audioPath string) error {
	cmd := exec.CommandContext(ctx, e.binary,
		"-i", videoPath,
		"-ac", "1",
		"-ar", "16000",
		"-y", audioPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg audio extraction failed: %w: %s", err, output)
	}
	return nil
}
