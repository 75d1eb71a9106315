package database

import "time"

// Chat represents a group chat the bot has joined. Presence in the table
// means "believed reachable": the announcement loop evicts entries when the
// platform reports the chat gone, so staleness between passes is tolerated.
type Chat struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	ChatID int64  `db:"chat_id"`
	Title  string `db:"title"`
}
