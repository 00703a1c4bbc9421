// README: Terminal conversation with the assistant; one in-memory session per run.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"jeeny/internal/app"
	"jeeny/internal/config"
	"jeeny/internal/logging"
	"jeeny/internal/service"
)

func main() {
	cfg, err := config.Load(".", "./config")
	if err != nil {
		logging.New("info", "text").Fatal(err)
	}
	// Keep the terminal readable; only warnings and errors are logged.
	log := logging.NewWithOutput("warn", cfg.Log.Format, os.Stderr)
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := app.Build(ctx, cfg, log, app.Options{InMemorySessions: true})
	if err != nil {
		log.WithError(err).Fatal("wiring failed")
	}
	defer services.Close()

	sessionID := uuid.NewString()
	fmt.Println("أهلين! أنا مساعد جيني. احكيلي من وين لوين بدك تروح. (اكتب \"خروج\" للإنهاء)")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if service.IsFarewell(line) {
			if err := services.Planner.EndSession(ctx, sessionID); err != nil {
				log.WithError(err).Warn("end session")
			}
			fmt.Println("مع السلامة!")
			return
		}
		reply, err := services.Planner.HandleMessage(ctx, sessionID, line)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, service.ErrEmptyMessage) {
				continue
			}
			log.WithError(err).Error("message failed")
			fmt.Println("صار خطأ، جرب كمان مرة.")
			continue
		}
		fmt.Println(reply.Text)
	}
	if err := scanner.Err(); err != nil {
		log.WithError(err).Error("read stdin")
	}
}
