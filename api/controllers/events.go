package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/angelmondragon/caraccessories-storefront/api/responses"
	"github.com/angelmondragon/caraccessories-storefront/pkg/bus"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
)

const (
	eventBuffer       = 16
	heartbeatInterval = 25 * time.Second
)

// UIOpenLogin asks every listening page to show the login dialog.
func UIOpenLogin(b *bus.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := bus.Publish(r.Context(), b, bus.OpenLogin, bus.Signal{})
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"eventId": id})
	}
}

// UIOpenRegister asks every listening page to show the registration dialog.
func UIOpenRegister(b *bus.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := bus.Publish(r.Context(), b, bus.OpenRegister, bus.Signal{})
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"eventId": id})
	}
}

// Events streams bus events as server-sent events. Only events published
// after the client connects are delivered; a slow client drops events
// rather than blocking publishers.
func Events(b *bus.Bus, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := http.NewResponseController(w)
		ctx := r.Context()

		events := make(chan bus.Event, eventBuffer)
		unsubscribe := b.SubscribeAll(func(_ context.Context, evt bus.Event) {
			select {
			case events <- evt:
			default:
				logg.Warn(logg.WithField(ctx, "topic", evt.Topic), "event stream client too slow; dropping event")
			}
		})
		defer unsubscribe()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		if err := rc.Flush(); err != nil {
			logg.Error(ctx, "event stream cannot flush", err)
			return
		}

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
			case evt := <-events:
				if err := writeEvent(w, evt); err != nil {
					logg.Warn(logg.WithField(ctx, "error", err.Error()), "event stream write failed")
					return
				}
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, evt bus.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", evt.EventID, evt.Topic, data)
	return err
}
