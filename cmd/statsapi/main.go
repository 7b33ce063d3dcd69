package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jose-valero/guildrules-bot/internal/adapters/httpapi"
	"github.com/jose-valero/guildrules-bot/internal/infra/storage"
)

var (
	emojis      httpapi.EmojiSource
	secretValue = os.Getenv("STATS_API_TOKEN")
)

func init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		slog.Warn("DATABASE_URL empty; every request will fail")
		return
	}
	db, err := storage.Open(context.Background(), dsn, 4)
	if err != nil {
		slog.Error("db open", "err", err)
		return
	}
	emojis = storage.NewEmojiRepo(db)
}

func readSecret(req events.APIGatewayV2HTTPRequest) string {
	for _, k := range []string{"authorization", "Authorization"} {
		if v := req.Headers[k]; v != "" {
			return strings.TrimPrefix(v, "Bearer ")
		}
	}
	return ""
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	slog.Info("stats hit", "path", req.RawPath, "ip", req.RequestContext.HTTP.SourceIP)

	if secretValue == "" || subtle.ConstantTimeCompare([]byte(readSecret(req)), []byte(secretValue)) != 1 {
		return respond(401, map[string]string{"error": "unauthorized"}), nil
	}
	if emojis == nil {
		return respond(503, map[string]string{"error": "store unavailable"}), nil
	}

	guildID := req.PathParameters["guildID"]
	if guildID == "" {
		return respond(400, map[string]string{"error": "missing guildID"}), nil
	}

	resp, err := httpapi.EmojiStats(ctx, emojis, guildID, req.QueryStringParameters["limit"])
	switch {
	case errors.Is(err, httpapi.ErrBadLimit):
		return respond(400, map[string]string{"error": err.Error()}), nil
	case err != nil:
		slog.Error("emoji stats", "guild", guildID, "err", err)
		return respond(500, map[string]string{"error": "internal error"}), nil
	}
	return respond(200, resp), nil
}

func respond(status int, v any) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(v)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func main() { lambda.Start(handler) }
