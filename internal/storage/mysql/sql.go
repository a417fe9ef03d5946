package mysql

const userByExternalIDSQL = `
SELECT id, clerk_id, COALESCE(name, ''), created_at
FROM users
WHERE clerk_id = ?
`

const insertBookmarkSQL = `
INSERT INTO bookmarks (user_id, content_id)
VALUES (?, ?)
`

const deleteBookmarkSQL = `
DELETE FROM bookmarks
WHERE user_id = ? AND content_id = ?
`

// placeholders for the IN list are appended at call time
const deleteBookmarksPrefix = "DELETE FROM bookmarks\nWHERE user_id = ? AND content_id IN "

const hasBookmarkSQL = `
SELECT EXISTS (
  SELECT 1 FROM bookmarks WHERE user_id = ? AND content_id = ?
)
`

// id breaks ties between rows created in the same millisecond
const listBookmarksSQL = `
SELECT user_id, content_id, created_at
FROM bookmarks
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
`

const countUsersSQL = `SELECT COUNT(*) FROM users`

const countBookmarksSQL = `SELECT COUNT(*) FROM bookmarks`

const bookmarkContentIDsSQL = `
SELECT content_id
FROM bookmarks
ORDER BY created_at DESC, id DESC
`

const usersCreatedSinceSQL = `
SELECT created_at FROM users
WHERE created_at >= ?
ORDER BY created_at
`

const bookmarksCreatedSinceSQL = `
SELECT created_at FROM bookmarks
WHERE created_at >= ?
ORDER BY created_at
`

const recentUsersSQL = `
SELECT id, clerk_id, COALESCE(name, ''), created_at
FROM users
ORDER BY created_at DESC, id DESC
LIMIT ?
`

const recentBookmarksSQL = `
SELECT b.content_id, COALESCE(u.name, '') AS user_name, b.created_at
FROM bookmarks b
LEFT JOIN users u ON u.id = b.user_id
ORDER BY b.created_at DESC, b.id DESC
LIMIT ?
`
