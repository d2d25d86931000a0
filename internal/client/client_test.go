package client_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jasperwreed/astroguide/internal/client"
	"github.com/jasperwreed/astroguide/internal/models"
)

var _ = Describe("Client", func() {
	var (
		router *gin.Engine
		server *httptest.Server
		c      *client.Client
		ctx    context.Context
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		server = httptest.NewServer(router)
		c = client.New(server.URL+"/api/v0", "client-123", client.WithTimeout(2*time.Second))
		ctx = context.Background()
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("CreateConversation", func() {
		It("posts the title and sends the client id header", func() {
			var gotHeader string
			var gotBody map[string]string
			router.POST("/api/v0/conversations", func(ctx *gin.Context) {
				gotHeader = ctx.GetHeader("X-Client-Id")
				Expect(ctx.ShouldBindJSON(&gotBody)).To(Succeed())
				ctx.JSON(http.StatusCreated, gin.H{
					"id":        "conv-1",
					"title":     "Stars",
					"createdAt": "2026-01-02T03:04:05Z",
					"updatedAt": "2026-01-02T03:04:05Z",
				})
			})

			conv, err := c.CreateConversation(ctx, "Stars")
			Expect(err).NotTo(HaveOccurred())
			Expect(conv.ID).To(Equal("conv-1"))
			Expect(conv.DisplayTitle()).To(Equal("Stars"))
			Expect(gotHeader).To(Equal("client-123"))
			Expect(gotBody).To(HaveKeyWithValue("title", "Stars"))
		})
	})

	Describe("ListConversations", func() {
		It("passes limit and cursor as query parameters", func() {
			router.GET("/api/v0/conversations", func(ctx *gin.Context) {
				Expect(ctx.Query("limit")).To(Equal("20"))
				Expect(ctx.Query("cursor")).To(Equal("abc"))
				ctx.JSON(http.StatusOK, gin.H{
					"items": []gin.H{{
						"id":                 "conv-1",
						"title":              nil,
						"createdAt":          "2026-01-02T03:04:05Z",
						"updatedAt":          "2026-01-02T03:04:05Z",
						"lastMessagePreview": "What is a pulsar?",
					}},
					"nextCursor": nil,
				})
			})

			list, err := c.ListConversations(ctx, "abc", 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(list.Items).To(HaveLen(1))
			Expect(list.Items[0].Title).To(BeNil())
			Expect(*list.Items[0].LastMessagePreview).To(Equal("What is a pulsar?"))
			Expect(list.NextCursor).To(BeNil())
		})
	})

	Describe("GetConversation", func() {
		It("normalizes server messages into confirmed ids", func() {
			router.GET("/api/v0/conversations/:id", func(ctx *gin.Context) {
				Expect(ctx.Param("id")).To(Equal("conv-1"))
				Expect(ctx.Query("before")).To(Equal("cursor-9"))
				ctx.JSON(http.StatusOK, gin.H{
					"conversation": gin.H{"id": "conv-1", "title": "t", "createdAt": "2026-01-02T03:04:05Z", "updatedAt": "2026-01-02T03:04:05Z"},
					"messages": []gin.H{{
						"id": "m1", "role": "assistant", "content": "hi", "status": "done",
						"difficulty": "basic", "promptTokens": 5, "createdAt": "2026-01-02T03:04:06Z",
					}},
					"nextBefore": "cursor-8",
				})
			})

			detail, err := c.GetConversation(ctx, "conv-1", "cursor-9", 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(*detail.NextBefore).To(Equal("cursor-8"))

			msg := detail.Messages[0].Normalize()
			Expect(msg.ID).To(Equal(models.ConfirmedID("m1")))
			Expect(msg.ID.IsPending()).To(BeFalse())
			Expect(*msg.Difficulty).To(Equal(models.DifficultyBasic))
			Expect(msg.Language).To(BeNil())
			Expect(msg.Citations).To(BeEmpty())
		})

		It("keeps the page when a timestamp has no zone or cannot be read", func() {
			router.GET("/api/v0/conversations/:id", func(ctx *gin.Context) {
				ctx.JSON(http.StatusOK, gin.H{
					"conversation": gin.H{"id": "conv-1"},
					"messages": []gin.H{
						{"id": "m1", "role": "user", "content": "Why?", "status": "done", "createdAt": "2024-05-01T10:00:00"},
						{"id": "m2", "role": "assistant", "content": "Dust.", "status": "done", "createdAt": "later"},
					},
				})
			})

			detail, err := c.GetConversation(ctx, "conv-1", "", 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.Messages).To(HaveLen(2))
			Expect(detail.Messages[0].CreatedAt).To(BeTemporally("==", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
			Expect(detail.Messages[1].CreatedAt.IsZero()).To(BeTrue())
		})
	})

	Describe("error handling", func() {
		It("decodes structured error bodies", func() {
			router.POST("/api/v0/conversations/:id/messages", func(ctx *gin.Context) {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": gin.H{
					"code": "content_too_long", "message": "too long", "requestId": "req-7",
				}})
			})

			_, err := c.SubmitMessage(ctx, "conv-1", client.SubmitMessageRequest{Content: "x"})
			apiErr, ok := client.AsAPIError(err)
			Expect(ok).To(BeTrue())
			Expect(apiErr.Status).To(Equal(http.StatusUnprocessableEntity))
			Expect(apiErr.Code).To(Equal("content_too_long"))
			Expect(apiErr.RequestID).To(Equal("req-7"))
			Expect(apiErr.IsRateLimited()).To(BeFalse())
		})

		It("maps non-JSON error bodies to network_error", func() {
			router.GET("/api/v0/conversations", func(ctx *gin.Context) {
				ctx.String(http.StatusBadGateway, "<html>bad gateway</html>")
			})

			_, err := c.ListConversations(ctx, "", 20)
			apiErr, ok := client.AsAPIError(err)
			Expect(ok).To(BeTrue())
			Expect(apiErr.Code).To(Equal(client.CodeNetworkError))
			Expect(apiErr.Message).To(Equal("Bad Gateway"))
		})

		It("flags 429 as rate limited and reads Retry-After", func() {
			router.POST("/api/v0/conversations/:id/messages", func(ctx *gin.Context) {
				ctx.Header("Retry-After", "12")
				ctx.JSON(http.StatusTooManyRequests, gin.H{})
			})

			_, err := c.SubmitMessage(ctx, "conv-1", client.SubmitMessageRequest{Content: "x"})
			Expect(client.IsRateLimited(err)).To(BeTrue())
			apiErr, _ := client.AsAPIError(err)
			Expect(apiErr.Code).To(Equal(client.CodeRateLimited))
			Expect(apiErr.RetryAfter).To(Equal(12 * time.Second))
		})

		It("reports unreachable servers as network errors", func() {
			server.Close()

			_, err := c.ListConversations(ctx, "", 20)
			apiErr, ok := client.AsAPIError(err)
			Expect(ok).To(BeTrue())
			Expect(apiErr.Status).To(BeZero())
			Expect(apiErr.Code).To(Equal(client.CodeNetworkError))
		})
	})

	Describe("LookupConcept", func() {
		It("sends type, lang and key", func() {
			router.GET("/api/v0/concepts/lookup", func(ctx *gin.Context) {
				Expect(ctx.Query("type")).To(Equal("term"))
				Expect(ctx.Query("lang")).To(Equal("en"))
				Expect(ctx.Query("key")).To(Equal("parsec"))
				ctx.JSON(http.StatusOK, gin.H{"key": "parsec", "title": "Parsec", "seeAlso": []string{"light-year"}})
			})

			concept, err := c.LookupConcept(ctx, client.ConceptQuery{Type: models.ConceptTerm, Language: models.LanguageEn, Key: "parsec"})
			Expect(err).NotTo(HaveOccurred())
			Expect(concept.Title).To(Equal("Parsec"))
			Expect(concept.SeeAlso).To(ConsistOf("light-year"))
		})
	})

	Describe("streams", func() {
		It("resolves relative stream urls against the api base", func() {
			Expect(c.ResolveStreamURL("/api/v0/stream/m1")).To(Equal(server.URL + "/api/v0/stream/m1"))
			Expect(c.ResolveStreamURL("https://cdn.example.com/s/1")).To(Equal("https://cdn.example.com/s/1"))
		})

		It("opens the stream with event-stream headers", func() {
			router.GET("/api/v0/stream/:id", func(ctx *gin.Context) {
				Expect(ctx.GetHeader("Accept")).To(Equal("text/event-stream"))
				Expect(ctx.GetHeader("X-Client-Id")).To(Equal("client-123"))
				ctx.Header("Content-Type", "text/event-stream")
				ctx.String(http.StatusOK, "event: delta\ndata: {\"text\":\"hi\"}\n\n")
			})

			body, err := c.OpenStream(ctx, "/api/v0/stream/m1")
			Expect(err).NotTo(HaveOccurred())
			defer body.Close()

			raw, err := io.ReadAll(body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(ContainSubstring("event: delta"))
		})

		It("returns stream_unavailable for non-2xx responses", func() {
			router.GET("/api/v0/stream/:id", func(ctx *gin.Context) {
				ctx.Status(http.StatusNotFound)
			})

			_, err := c.OpenStream(ctx, "/api/v0/stream/missing")
			apiErr, ok := client.AsAPIError(err)
			Expect(ok).To(BeTrue())
			Expect(apiErr.Code).To(Equal(client.CodeStreamUnavailable))
			Expect(apiErr.Status).To(Equal(http.StatusNotFound))
		})
	})
})
