// Package session provides the durable session store of the client.
//
// # Overview
//
// A Repository is a small string key/value contract (Get/Set/Remove plus
// SetMany, List and Clear). SQLiteRepository persists it in a local SQLite file
// whose schema is managed by embedded goose migrations (see OpenSQLite);
// MemoryRepository keeps it in process memory.
//
// Store sits on top of a Repository and knows the two keys the client uses:
//
//   - "token": the raw bearer token
//   - "user":  the JSON-serialized user profile
//
// No encryption and no expiry tracking are performed; token lifetime belongs
// to the backend.
//
// Typical Usage
//
//	db, _ := session.OpenSQLite(ctx, "session.db")
//	st := session.NewStore(session.NewSQLiteRepository(db))
//	_ = st.Save(ctx, models.Session{Token: t, User: u})
//	sess, ok, _ := st.Load(ctx)
package session
