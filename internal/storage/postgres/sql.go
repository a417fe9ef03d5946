package postgres

const userByExternalIDSQL = `
SELECT id, clerk_id, COALESCE(name, '') AS name, created_at
FROM users
WHERE clerk_id = $1
`

const insertBookmarkSQL = `
INSERT INTO bookmarks (user_id, content_id)
VALUES ($1, $2)
`

const deleteBookmarkSQL = `
DELETE FROM bookmarks
WHERE user_id = $1 AND content_id = $2
`

// bindvars are expanded by sqlx.In and rebound for pgx
const deleteBookmarksSQL = `
DELETE FROM bookmarks
WHERE user_id = ? AND content_id IN (?)
`

const hasBookmarkSQL = `
SELECT EXISTS (
  SELECT 1 FROM bookmarks WHERE user_id = $1 AND content_id = $2
)
`

const listBookmarksSQL = `
SELECT user_id, content_id, created_at
FROM bookmarks
WHERE user_id = $1
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
WHERE created_at >= $1
ORDER BY created_at
`

const bookmarksCreatedSinceSQL = `
SELECT created_at FROM bookmarks
WHERE created_at >= $1
ORDER BY created_at
`

const recentUsersSQL = `
SELECT id, clerk_id, COALESCE(name, '') AS name, created_at
FROM users
ORDER BY created_at DESC, id DESC
LIMIT $1
`

const recentBookmarksSQL = `
SELECT b.content_id, COALESCE(u.name, '') AS user_name, b.created_at
FROM bookmarks b
LEFT JOIN users u ON u.id = b.user_id
ORDER BY b.created_at DESC, b.id DESC
LIMIT $1
`
