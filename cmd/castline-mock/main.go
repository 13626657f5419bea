// castline-mock runs the in-memory mock of the Castline backend for local
// development, seeded with a few threads so compose and thread commands
// have something to resolve.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/castline/castline-go/internal/mockapi"
	"github.com/castline/castline-go/internal/threads"
)

func main() {
	port := flag.Int("port", 8485, "port to listen on")
	flag.Parse()

	server := mockapi.New()
	seed(server)

	addr := fmt.Sprintf(":%d", *port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("castline mock API starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func seed(server *mockapi.Server) {
	now := time.Now().UTC()
	reply := now.Add(-2 * time.Hour)
	older := now.Add(-26 * time.Hour)

	server.AddThread(threads.Thread{
		ID:            "thr_1001",
		Subject:       "Guest spot on The Deep Dive",
		Participants:  []string{"host@deepdivepod.fm"},
		MessageCount:  3,
		LastMessageAt: &now,
		LastReplyAt:   &reply,
		PitchID:       "pit_42",
		CampaignID:    "cam_7",
		Source:        "stored",
	})
	server.AddThread(threads.Thread{
		ID:            "thr_1002",
		Subject:       "Re: Intro for your listeners",
		Participants:  []string{"booking@nightshow.example"},
		MessageCount:  1,
		LastMessageAt: &older,
		PlacementID:   "plc_9",
		CampaignID:    "cam_7",
		Source:        "live",
	})
}
