/*
Package handler provides the HTTP handlers and routing setup for the Chatter server.

This file contains the read-only presence and history handlers. They observe the
broadcast core through membership snapshots and never mutate its state.
*/
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"chatter/internal/app/broadcast"
	"chatter/internal/pkg/errs"
	"chatter/internal/pkg/logx"
	"chatter/internal/pkg/randx"
	"chatter/internal/pkg/resp"
)

// roomPresenceResponse is the payload of the presence endpoint.
type roomPresenceResponse struct {
	Slug        string                 `json:"slug"`
	MemberCount int                    `json:"memberCount"`
	Members     []broadcast.MemberInfo `json:"members"`
}

// HandleRoomPresence returns the current member count and member list for a room.
// An unknown room yields an empty presence, never an error.
func HandleRoomPresence(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if !randx.IsValidRoomSlug(slug) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomSlugInvalid))
			return
		}

		members := deps.Service.Members().List(slug)

		infos := make([]broadcast.MemberInfo, 0, len(members))
		for _, m := range members {
			infos = append(infos, broadcast.MemberInfo{Username: m.Username})
		}

		resp.RespondSuccess(w, r, roomPresenceResponse{
			Slug:        slug,
			MemberCount: len(members),
			Members:     infos,
		})
	}
}

// HandleRoomHistory returns the most recent persisted messages for a room.
// Only routed when the history side channel is enabled.
func HandleRoomHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if !randx.IsValidRoomSlug(slug) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomSlugInvalid))
			return
		}

		limit := 50
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			parsed, err := strconv.Atoi(limitStr)
			if err != nil || parsed <= 0 || parsed > 200 {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			limit = parsed
		}

		messages, err := deps.History.Recent(r.Context(), slug, limit)
		if err != nil {
			logx.Error(err, "Failed to load room history", "room", slug)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"slug":     slug,
			"messages": messages,
		})
	}
}
