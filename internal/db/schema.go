package db

var Schema string = `
CREATE TABLE IF NOT EXISTS documents
(
    collection TEXT NOT NULL,
    id         TEXT NOT NULL,

    doc TEXT NOT NULL,

    created_at INTEGER DEFAULT (strftime('%s', 'now')),
    updated_at INTEGER DEFAULT (strftime('%s', 'now')),

    PRIMARY KEY (collection, id)
);

CREATE UNIQUE INDEX IF NOT EXISTS unique_user_email
    ON documents (json_extract(doc, '$.email'))
    WHERE collection = 'users';

CREATE INDEX IF NOT EXISTS documents_user_id
    ON documents (collection, json_extract(doc, '$.user_id'));
`
