package system

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file limit; the loader keeps several
// frame files open at once.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Failed to read the open-file limit: %v", err)
		return
	}

	if rLimit.Cur >= 2048 {
		return
	}
	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Failed to raise the open-file limit: %v", err)
	} else {
		fmt.Printf("[*] Open-file limit raised to %d\n", rLimit.Cur)
	}
}

// GetBestH264Encoder picks a hardware encoder when ffmpeg offers one.
// Priority: VideoToolbox (macOS), NVENC (NVIDIA), then libx264.
func GetBestH264Encoder() string {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	return pickEncoder(string(out))
}

func pickEncoder(listing string) string {
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(listing, name) {
			return name
		}
	}
	return "libx264"
}

// DefaultQuality is the quality setting used when none is given: a bitrate
// factor for VideoToolbox, CQ for NVENC and CRF for x264.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75
	case "h264_nvenc":
		return 28
	default:
		return 23
	}
}

// DecodedSize estimates the memory held by n decoded RGBA frames.
func DecodedSize(n, width, height int) uint64 {
	if n <= 0 || width <= 0 || height <= 0 {
		return 0
	}
	return uint64(n) * uint64(width) * uint64(height) * 4
}

// CheckMemoryBudget compares the decoded frame cache against available
// memory. It reports whether the cache fits in half of what is available.
func CheckMemoryBudget(n, width, height int) (need, available uint64, ok bool, err error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, true, fmt.Errorf("failed to read memory stats: %w", err)
	}
	need = DecodedSize(n, width, height)
	return need, vm.Available, fitsBudget(need, vm.Available), nil
}

func fitsBudget(need, available uint64) bool {
	return need <= available/2
}
