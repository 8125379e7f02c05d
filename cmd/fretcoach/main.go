package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/avashisht/fretcoach/internal/capture"
	"github.com/avashisht/fretcoach/internal/detector"
	"github.com/avashisht/fretcoach/internal/pipeline"
	"github.com/avashisht/fretcoach/internal/server"
	"github.com/avashisht/fretcoach/internal/store"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	cameraID := flag.Int("camera", 0, "camera device ID")
	flag.Parse()

	fmt.Println("Fretcoach - Guitar Chord Practice")

	// Initialize the store
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dbDir := filepath.Join(homeDir, ".fretcoach")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dbDir, "fretcoach.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Try MediaPipe first, fall back to mock detector
	var det detector.Detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		det = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		det = detector.NewMockDetector()
	}
	defer det.Close()

	cam := capture.NewCamera(*cameraID)

	orch := pipeline.New(pipeline.Config{
		Camera:   cam,
		Detector: det,
	})

	// Restore the most recent calibration so practice can resume without
	// re-tapping the fretboard corners.
	if profile, err := st.Calibrations().Latest(); err == nil {
		orch.SetGeometry(profile.Geometry, profile.Manual)
		log.Printf("Restored calibration %q from %s", profile.Name, profile.CreatedAt.Format("2006-01-02"))
	}

	if err := orch.Start(); err != nil {
		log.Printf("Pipeline not started (%v); calibration API remains available", err)
	}
	defer orch.Stop()

	srv := server.New(server.Config{
		StaticDir:    findWebDir(),
		Store:        st,
		Camera:       cam,
		Orchestrator: orch,
	})

	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	fmt.Println("Shutting down")
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.fretcoach/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".fretcoach", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
