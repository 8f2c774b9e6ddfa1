// Command huntdemo drives the hunt engine from a terminal: it resumes
// stored progress, mirrors awards to a running points server when one
// is reachable, and accepts the same triggers the site UI produces
// (QR payloads, geolocation fixes, manual test clicks).
package main

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/rasnovtravel/townhunt/internal/camera"
	"github.com/rasnovtravel/townhunt/internal/config"
	"github.com/rasnovtravel/townhunt/internal/hunt"
	"github.com/rasnovtravel/townhunt/internal/progress"
	"github.com/rasnovtravel/townhunt/internal/remote"
)

func main() {
	if err := run(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(stdin io.Reader, stdout io.Writer) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	store := progress.New(
		progress.NewFileBackend(filepath.Join(cfg.DataDir, "progress.json")),
		progress.NewFileBackend(filepath.Join(cfg.DataDir, "progress.backup.json")),
		filepath.Join(cfg.DataDir, "photos"),
		logger,
	)

	syncURL := os.Getenv("SYNC_URL")
	var reporter hunt.SyncReporter
	if syncURL != "" {
		reporter = remote.New(syncURL, nil)
	}

	catalog := hunt.RasnovCatalog()
	machine := hunt.NewMachine(catalog, store, reporter, logger, hunt.Options{
		EnablePhotoCapture: true,
		EnableServerSync:   syncURL != "",
		AllowTestingMode:   cfg.AllowTestingMode,
	})

	// No camera hardware in a terminal; a fixed frame stands in so the
	// capture and compositing flow still runs for real.
	frame := image.NewRGBA(image.Rect(0, 0, 640, 480))
	draw.Draw(frame, frame.Bounds(),
		&image.Uniform{C: color.RGBA{R: 0x90, G: 0xa4, B: 0xae, A: 0xff}},
		image.Point{}, draw.Src)
	cam := camera.NewSession(camera.NewStaticDevice(frame), camera.NewMascotOverlay())
	machine.Subscribe(func(ev hunt.Event) {
		switch ev.Type {
		case hunt.EventHuntStarted:
			fmt.Fprintf(stdout, "hunt started (session %s, %d/%d found)\n",
				ev.SessionID, ev.Found, ev.Total)
		case hunt.EventLocationFound:
			fmt.Fprintf(stdout, "found %s (+%d points, %d/%d, total %d)\n",
				ev.LocationName, ev.Points, ev.Found, ev.Total, ev.TotalPoints)
			if ev.Fact != "" {
				fmt.Fprintf(stdout, "  fun fact: %s\n", ev.Fact)
			}
		case hunt.EventHuntComplete:
			fmt.Fprintf(stdout, "hunt complete! total points: %d\n", ev.TotalPoints)
		case hunt.EventNotice:
			fmt.Fprintf(stdout, "%s\n", ev.Notice)
		}
	})

	p, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading progress: %w", err)
	}
	machine.Resume(p)
	fmt.Fprintf(stdout, "player %s: %d points, %d/%d found (state %s)\n",
		p.Username, p.TotalPoints, len(p.LocationsFound), catalog.Len(), machine.State())

	ctx := context.Background()
	scanner := bufio.NewScanner(stdin)
	fmt.Fprint(stdout, "> ")
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			fmt.Fprint(stdout, "> ")
			continue
		}

		switch cmd := fields[0]; cmd {
		case "start":
			report(stdout, machine.Start())
		case "stop":
			report(stdout, machine.Stop())
		case "testing":
			report(stdout, machine.SetTestingMode(len(fields) > 1 && fields[1] == "on"))
		case "scan":
			if len(fields) < 2 {
				fmt.Fprintln(stdout, "usage: scan <payload>")
				break
			}
			_, err := machine.ResolveScan(ctx, fields[1])
			reportTrigger(stdout, err)
		case "goto":
			if len(fields) < 3 {
				fmt.Fprintln(stdout, "usage: goto <lat> <lng>")
				break
			}
			lat, err1 := strconv.ParseFloat(fields[1], 64)
			lng, err2 := strconv.ParseFloat(fields[2], 64)
			if err1 != nil || err2 != nil {
				fmt.Fprintln(stdout, "usage: goto <lat> <lng>")
				break
			}
			_, err := machine.CheckProximity(ctx, hunt.Fix{Lat: lat, Lng: lng})
			reportTrigger(stdout, err)
		case "capture":
			if len(fields) < 2 {
				fmt.Fprintln(stdout, "usage: capture <key>")
				break
			}
			if err := capturePhoto(cam, machine, fields[1]); err != nil {
				fmt.Fprintln(stdout, err)
				break
			}
			fmt.Fprintf(stdout, "photo staged for %s; it is saved when the location is discovered\n", fields[1])
		case "find":
			if len(fields) < 2 {
				fmt.Fprintln(stdout, "usage: find <key>")
				break
			}
			_, err := machine.Discover(ctx, fields[1])
			reportTrigger(stdout, err)
		case "status":
			p := machine.Progress()
			fmt.Fprintf(stdout, "%s: %d points, %d/%d found (state %s)\n",
				p.Username, p.TotalPoints, len(p.LocationsFound), catalog.Len(), machine.State())
		case "reset":
			report(stdout, machine.Reset())
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintf(stdout, "unknown command %q\n", cmd)
		}
		fmt.Fprint(stdout, "> ")
	}
	return scanner.Err()
}

// capturePhoto runs the full capture flow: open the camera, composite
// the mascot, release the device, stage the result for the discovery.
func capturePhoto(cam *camera.Session, machine *hunt.Machine, key string) error {
	if err := cam.Open(); err != nil {
		return err
	}
	defer cam.Close()

	blob, err := cam.Composite(key)
	if err != nil {
		return err
	}
	return machine.StagePhoto(key, blob)
}

func report(w io.Writer, err error) {
	if err != nil {
		fmt.Fprintln(w, err)
	}
}

// reportTrigger swallows the informational outcomes; the subscriber
// already printed their notices.
func reportTrigger(w io.Writer, err error) {
	switch err {
	case nil, hunt.ErrAlreadyFound, hunt.ErrUnknownScan:
	default:
		fmt.Fprintln(w, err)
	}
}
