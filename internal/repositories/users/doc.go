// Package users contains the user record repositories. The Repository
// interface is implemented for PostgreSQL, SQLite, and an in-memory store;
// all three enforce the same write-time contract: email is required and
// unique, and ids are assigned by the store, strictly increasing and never
// reused.
package users
