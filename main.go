package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// fileLoad is one -f "offset,path" pair.
type fileLoad struct {
	offset uint32
	path   string
}

// listingLoad is one -l "hex-page,path" pair.
type listingLoad struct {
	page uint32
	path string
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("beastem", flag.ContinueOnError)

	var loads []fileLoad
	fs.Func("f", "load binary: hex-offset,path (offset<0x80000 -> ROM; else RAM)", func(s string) error {
		l, err := parseFileLoad(s)
		if err != nil {
			return err
		}
		loads = append(loads, l)
		return nil
	})

	var listings []listingLoad
	fs.Func("l", "register listing file: hex-page,path", func(s string) error {
		l, err := parseListingLoad(s)
		if err != nil {
			return err
		}
		listings = append(listings, l)
		return nil
	})

	khz := fs.Int("k", 8000, "target CPU speed in kHz")
	breakAddr := fs.String("b", "", "initial breakpoint (hex address)")
	audioDevice := fs.Int("a", 0, "audio device index")
	sampleRate := fs.Int("s", 44100, "audio sample rate")
	volume := fs.Int("v", 5, "audio volume (0-10)")
	zoom := fs.Float64("z", 1.0, "UI zoom factor")
	headless := fs.Bool("headless", false, "run without a graphical host (test/CI backend)")

	vramImage := fs.String("vram", "", "video coprocessor VRAM image file")
	videoRegs := fs.String("vregs", "", "video coprocessor register text file")
	palette1 := fs.String("pal1", "", "video coprocessor palette 1 file")
	palette2 := fs.String("pal2", "", "video coprocessor palette 2 file")

	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: beastem [flags]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *volume < 0 || *volume > 10 {
		fmt.Fprintln(os.Stderr, "beastem: -v volume must be between 0 and 10")
		return 1
	}

	assetsDir := os.Getenv("BEASTEM_ASSETS")

	bus := NewBus(uint64(*khz) * 1000)
	cpu := NewCPU_Z80(bus)
	runner := NewRunner(cpu, bus)

	for _, l := range loads {
		if err := LoadBinary(bus.Memory(), resolveAsset(assetsDir, l.path), l.offset); err != nil {
			fmt.Fprintln(os.Stderr, "beastem:", err)
			return 1
		}
	}
	for _, l := range listings {
		l.path = resolveAsset(assetsDir, l.path)
		if err := loadListingFile(l); err != nil {
			fmt.Fprintln(os.Stderr, "beastem:", err)
			return 1
		}
	}

	if bus.Video() != nil && (*vramImage != "" || *videoRegs != "" || *palette1 != "" || *palette2 != "") {
		err := LoadVideoInit(bus.Video(), resolveAsset(assetsDir, *vramImage),
			resolveAsset(assetsDir, *videoRegs), resolveAsset(assetsDir, *palette1), resolveAsset(assetsDir, *palette2))
		if err != nil {
			fmt.Fprintln(os.Stderr, "beastem:", err)
			return 1
		}
	}

	if *breakAddr != "" {
		addr, err := strconv.ParseUint(*breakAddr, 16, 16)
		if err != nil {
			fmt.Fprintln(os.Stderr, "beastem: invalid -b address:", *breakAddr)
			return 1
		}
		bus.Debug().AddBreakpoint(BreakLogical, uint32(addr), nil)
		runner.SetMode(ModeRun)
	} else {
		runner.SetMode(ModeRun)
	}

	bus.net.Listen()
	defer bus.net.Close()

	host, err := newHostBackend(*headless, bus, runner, *audioDevice, *sampleRate, *volume, *zoom)
	if err != nil {
		fmt.Fprintln(os.Stderr, "beastem:", err)
		return 1
	}
	defer host.Close()

	bus.SetHostPoll(host.Poll)

	var monitor *DebugMonitor
	if !*headless {
		if m, err := NewDebugMonitor(runner, bus, int(os.Stdin.Fd())); err == nil {
			monitor = m
			defer monitor.Close()
		}
	}

	for runner.Mode() != ModeQuit {
		switch runner.Mode() {
		case ModeDebug, ModeFiles, ModeBreakpoints, ModeWatchpoints:
			if monitor == nil {
				runner.SetMode(ModeQuit)
				continue
			}
			monitor.RunLoop()
		default:
			runner.RunOne()
			if host.WantsQuit() {
				runner.SetMode(ModeQuit)
			}
		}
	}
	return 0
}

// resolveAsset joins a relative asset path against BEASTEM_ASSETS; absolute paths and an empty assetsDir pass through unchanged.
func resolveAsset(assetsDir, path string) string {
	if assetsDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(assetsDir, path)
}

func parseFileLoad(s string) (fileLoad, error) {
	offsetStr, path, ok := strings.Cut(s, ",")
	if !ok {
		return fileLoad{}, fmt.Errorf("-f expects hex-offset,path (got %q)", s)
	}
	offset, err := strconv.ParseUint(offsetStr, 16, 32)
	if err != nil {
		return fileLoad{}, fmt.Errorf("-f bad hex offset %q: %w", offsetStr, err)
	}
	return fileLoad{offset: uint32(offset), path: path}, nil
}

func parseListingLoad(s string) (listingLoad, error) {
	pageStr, path, ok := strings.Cut(s, ",")
	if !ok {
		return listingLoad{}, fmt.Errorf("-l expects hex-page,path (got %q)", s)
	}
	page, err := strconv.ParseUint(pageStr, 16, 32)
	if err != nil {
		return listingLoad{}, fmt.Errorf("-l bad hex page %q: %w", pageStr, err)
	}
	return listingLoad{page: uint32(page), path: path}, nil
}

func loadListingFile(l listingLoad) error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("load listing %s: %w", l.path, err)
	}
	if err := ValidateListing(data); err != nil {
		return fmt.Errorf("listing %s: %w", l.path, err)
	}
	return nil
}
