/*
Package session implements the session store used by the dialogue engine.

The Manager maps opaque session identifiers to domain.Session records kept in a
ports.SessionStore. It creates sessions lazily under freshly minted identifiers and
serialises turns per identifier: each identifier gets its own mutex (reference counted
so idle locks are collected), so unrelated sessions never wait on each other.
An optional DistributedLocker extends the guarantee across replicas.
*/
package session
