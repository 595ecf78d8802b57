package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/franz/sumotube/internal/util"
)

// FFprobeInfo represents the output from ffprobe
type FFprobeInfo struct {
	Streams []FFprobeStream `json:"streams"`
	Format  *FFprobeFormat  `json:"format"`
}

// IntOrString can unmarshal both integers and strings from JSON
type IntOrString struct {
	Value int
}

// UnmarshalJSON implements custom unmarshaling for IntOrString
func (i *IntOrString) UnmarshalJSON(data []byte) error {
	var intVal int
	if err := json.Unmarshal(data, &intVal); err == nil {
		i.Value = intVal
		return nil
	}

	var strVal string
	if err := json.Unmarshal(data, &strVal); err != nil {
		return err
	}

	// "N/A" and garbage become 0
	parsed, err := strconv.Atoi(strVal)
	if err != nil {
		i.Value = 0
		return nil
	}
	i.Value = parsed
	return nil
}

// FFprobeStream represents one audio or video stream
type FFprobeStream struct {
	Index     int         `json:"index"`
	CodecName string      `json:"codec_name"`
	CodecType string      `json:"codec_type"`
	Width     IntOrString `json:"width"`
	Height    IntOrString `json:"height"`
	Duration  string      `json:"duration"`
	BitRate   string      `json:"bit_rate"`
}

// FFprobeFormat represents container format metadata
type FFprobeFormat struct {
	Filename       string            `json:"filename"`
	FormatName     string            `json:"format_name"`
	FormatLongName string            `json:"format_long_name"`
	Duration       string            `json:"duration"`
	Size           string            `json:"size"`
	BitRate        string            `json:"bit_rate"`
	Tags           map[string]string `json:"tags"`
}

// RunFFprobe executes ffprobe and parses the JSON output
func RunFFprobe(ctx context.Context, path string) (*FFprobeInfo, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return nil, util.ErrNotFound
	}

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("ffprobe failed: %s", string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("ffprobe execution failed: %w", err)
	}

	return ParseFFprobe(output)
}

// ParseFFprobe decodes ffprobe's JSON output
func ParseFFprobe(output []byte) (*FFprobeInfo, error) {
	var info FFprobeInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &info, nil
}

// CheckFFprobeAvailable checks if ffprobe is available in PATH
func CheckFFprobeAvailable() bool {
	_, err := exec.LookPath("ffprobe")
	return err == nil
}

// Info converts ffprobe output into media facts. The container duration
// wins; otherwise the longest stream duration is used.
func (fi *FFprobeInfo) Info() Info {
	var info Info
	if fi.Format != nil {
		info.Container = fi.Format.FormatName
		info.Duration = parseSeconds(fi.Format.Duration)
	}

	var longest time.Duration
	for _, s := range fi.Streams {
		switch s.CodecType {
		case "video":
			if info.VideoCodec == "" {
				info.VideoCodec = s.CodecName
				info.Width = s.Width.Value
				info.Height = s.Height.Value
			}
		case "audio":
			if info.AudioCodec == "" {
				info.AudioCodec = s.CodecName
			}
		}
		if d := parseSeconds(s.Duration); d > longest {
			longest = d
		}
	}
	if info.Duration == 0 {
		info.Duration = longest
	}
	return info
}

func parseSeconds(s string) time.Duration {
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// FFprobe is a Prober backed by the ffprobe binary
type FFprobe struct{}

func (FFprobe) Probe(ctx context.Context, path string) (Info, error) {
	raw, err := RunFFprobe(ctx, path)
	if err != nil {
		return Info{}, &MediaProbeError{Path: path, Err: err}
	}
	info := raw.Info()
	if info.Duration == 0 {
		return info, &MediaProbeError{Path: path, Err: fmt.Errorf("no duration reported")}
	}
	return info, nil
}
