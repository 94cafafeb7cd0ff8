/*
Package handler provides the HTTP handlers and routing setup for the Chatter server.

This file contains the HandleWebSocket function, which validates the room slug,
upgrades the HTTP connection to WebSocket, and hands it to the session client
for its lifetime.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"chatter/internal/app/session"
	"chatter/internal/pkg/errs"
	"chatter/internal/pkg/logx"
	"chatter/internal/pkg/randx"
	"chatter/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
// On upgrade it registers the connection, attaches it to the room's fan-out group,
// and runs the read/write pumps until the connection closes.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if !randx.IsValidRoomSlug(slug) {
			logx.Warn("WebSocket request rejected: Invalid room slug", "slug", slug)
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomSlugInvalid))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := session.NewClient(slug, conn, deps.Registry, deps.Events, deps.Service)

		logx.Info("WebSocket connection established",
			"connection_id", client.ConnectionID(),
			"room", slug,
		)

		go client.WritePump()

		client.ReadPump()
	}
}
