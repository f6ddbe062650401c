package admin

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/db"
)

// GET /admin/stats
func Stats(c echo.Context) error {
	if db.Conn == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "database not configured"})
	}
	ctx := context.Background()

	var users, jobs, bids, conversations, messages, notifications, reviews int

	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&users)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&jobs)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM bids`).Scan(&bids)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&conversations)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&messages)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&notifications)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&reviews)

	return c.JSON(http.StatusOK, echo.Map{
		"users":         users,
		"jobs":          jobs,
		"bids":          bids,
		"conversations": conversations,
		"messages":      messages,
		"notifications": notifications,
		"reviews":       reviews,
	})
}
