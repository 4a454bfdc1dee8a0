// Package storage persists the service's state as whole JSON snapshots on
// disk. Each snapshot file is guarded by its own lock: readers share it,
// and every load-modify-save cycle holds it exclusively so that concurrent
// writers can never lose each other's updates.
package storage
