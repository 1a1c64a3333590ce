package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strings"

	"github.com/ivlev/framescrub/internal/system"
)

// FrameSink receives composited frames in presentation order.
type FrameSink interface {
	WriteFrame(img image.Image) error
	Close() error
}

type StreamParams struct {
	Width   int
	Height  int
	FPS     int
	Encoder string
	Quality int
	Filter  string
}

// Stream pipes raw RGBA frames into an ffmpeg encoder process.
type Stream struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	params StreamParams
	frames int
	closed bool
}

func OpenStream(ctx context.Context, path string, params StreamParams) (*Stream, error) {
	if params.Width <= 0 || params.Height <= 0 || params.FPS <= 0 {
		return nil, fmt.Errorf("invalid stream geometry %dx%d@%d", params.Width, params.Height, params.FPS)
	}

	s := &Stream{params: params}
	s.cmd = exec.CommandContext(ctx, "ffmpeg", buildStreamArgs(path, params)...)
	s.cmd.Stderr = &s.stderr

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	s.stdin = stdin

	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return s, nil
}

func buildStreamArgs(path string, params StreamParams) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", params.Width, params.Height),
		"-framerate", fmt.Sprintf("%d", params.FPS),
		"-i", "-",
	}
	if params.Filter != "" {
		args = append(args, "-vf", params.Filter)
	}
	args = append(args,
		"-r", fmt.Sprintf("%d", params.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", params.Encoder,
	)
	args = append(args, QualityArgs(params.Encoder, params.Quality)...)
	args = append(args, path)
	return args
}

// QualityArgs maps a single quality knob onto each encoder's own setting.
func QualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// bitrate in kbit/s: 75 -> 7.5 Mbit/s
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

func (s *Stream) WriteFrame(img image.Image) error {
	b := img.Bounds()
	if b.Dx() != s.params.Width || b.Dy() != s.params.Height {
		return fmt.Errorf("frame %d is %dx%d, stream expects %dx%d", s.frames, b.Dx(), b.Dy(), s.params.Width, s.params.Height)
	}
	if err := writeRawRGBA(s.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	s.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (s *Stream) Frames() int {
	return s.frames
}

// Close flushes the encoder and waits for ffmpeg to exit.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.stdin.Close()

	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, strings.TrimSpace(s.stderr.String()))
	}
	return nil
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if ok && rgba.Stride == bounds.Dx()*4 && rgba.Rect.Min.X == 0 && rgba.Rect.Min.Y == 0 {
		_, err := w.Write(rgba.Pix)
		return err
	}

	buf := system.GetImage(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	defer system.PutImage(buf)
	draw.Draw(buf, buf.Bounds(), img, bounds.Min, draw.Src)
	_, err := w.Write(buf.Pix)
	return err
}
