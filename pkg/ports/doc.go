/*
Package ports defines the driven ports (interfaces) for the Parley engine.

These interfaces decouple the dialogue core from storage, so sessions can live in
process memory, in an expiring cache, or in Redis shared by several replicas.

# Key Interfaces

  - SessionStore: Persists the Session record (identifier and current State).
  - DistributedLocker: Serialises turns of one session across replicas.
*/
package ports
