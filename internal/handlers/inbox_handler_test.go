package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campuscart/backend/internal/models"
)

func TestMessageHandler(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.register("alice")
	bob := s.register("bob")
	carol := s.register("carol")

	var p models.Product
	decodeData(t, s.do(http.MethodPost, "/api/product/postproduct", alice, bookForm(30)), &p)

	var sent models.Message
	rec := s.do(http.MethodPost, "/api/messages", bob, models.SendMessageRequest{
		Receiver: "alice", Content: "Is this still available?", ProductCode: &p.Code,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decodeData(t, rec, &sent)

	t.Run("Send_ToSelf", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/messages", bob, models.SendMessageRequest{Receiver: "bob", Content: "hi"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Conversation_Participants", func(t *testing.T) {
		var list []models.Message
		decodeData(t, s.do(http.MethodGet, "/api/messages/conversation/alice/bob", alice, nil), &list)
		require.Len(t, list, 1)

		decodeData(t, s.do(http.MethodGet, fmt.Sprintf("/api/messages/conversation/alice/bob/product/%d", p.Code), alice, nil), &list)
		require.Len(t, list, 1)

		rec := s.do(http.MethodGet, "/api/messages/conversation/alice/bob", carol, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("UnreadCount", func(t *testing.T) {
		var n models.UnreadCount
		decodeData(t, s.do(http.MethodGet, "/api/messages/unread/count/alice", alice, nil), &n)
		require.Equal(t, 1, n.Count)

		rec := s.do(http.MethodGet, "/api/messages/unread/count/alice", bob, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("MarkRead_ReceiverOnly", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/api/messages/"+sent.ID+"/read", bob, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = s.do(http.MethodPut, "/api/messages/"+sent.ID+"/read", alice, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var n models.UnreadCount
		decodeData(t, s.do(http.MethodGet, "/api/messages/unread/count/alice", alice, nil), &n)
		require.Zero(t, n.Count)
	})

	t.Run("Conversations_Summary", func(t *testing.T) {
		var list []models.Conversation
		decodeData(t, s.do(http.MethodGet, "/api/messages/conversations/alice", alice, nil), &list)
		require.Len(t, list, 1)
		require.Equal(t, "bob", list[0].OtherUser)
		require.Equal(t, sent.ID, list[0].LatestMessage.ID)
	})
}

func TestNotificationHandler(t *testing.T) {
	s := newTestServer(t, nil)
	seller := s.register("seller")
	other := s.register("other")
	admin := s.admin()

	var p models.Product
	decodeData(t, s.do(http.MethodPost, "/api/product/postproduct", seller, bookForm(12)), &p)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/product/approve", admin, models.ReviewRequest{ProductCode: p.Code}).Code)

	var notes []models.Notification
	decodeData(t, s.do(http.MethodGet, "/api/notifications/user/seller", seller, nil), &notes)
	require.Len(t, notes, 1)

	t.Run("List_OtherUserForbidden", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/notifications/user/seller", other, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("MarkRead", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/api/notifications/"+notes[0].ID+"/read", other, nil)
		require.NotEqual(t, http.StatusOK, rec.Code)

		rec = s.do(http.MethodPut, "/api/notifications/"+notes[0].ID+"/read", seller, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var n models.UnreadCount
		decodeData(t, s.do(http.MethodGet, "/api/notifications/user/seller/unread-count", seller, nil), &n)
		require.Zero(t, n.Count)
	})
}

func TestBookmarkHandler(t *testing.T) {
	s := newTestServer(t, nil)
	seller := s.register("seller")
	buyer := s.register("buyer")
	admin := s.admin()

	var p models.Product
	decodeData(t, s.do(http.MethodPost, "/api/product/postproduct", seller, bookForm(8)), &p)
	path := fmt.Sprintf("/api/bookmarks/%d", p.Code)

	t.Run("Add_HiddenListing", func(t *testing.T) {
		rec := s.do(http.MethodPost, path, buyer, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Add_VisibleListing", func(t *testing.T) {
		require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/product/approve", admin, models.ReviewRequest{ProductCode: p.Code}).Code)

		rec := s.do(http.MethodPost, path, buyer, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = s.do(http.MethodPost, path, buyer, nil)
		require.Equal(t, http.StatusConflict, rec.Code)

		var list []models.Product
		decodeData(t, s.do(http.MethodGet, "/api/bookmarks", buyer, nil), &list)
		require.Len(t, list, 1)
	})

	t.Run("Remove", func(t *testing.T) {
		rec := s.do(http.MethodDelete, path, buyer, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = s.do(http.MethodDelete, path, buyer, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
