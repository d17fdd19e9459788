package couplingdata

import (
	"sync"

	"github.com/jabolina/precouple/pkg/precouple/types"
)

var (
	internMutex sync.Mutex
	internIDs   = make(map[*types.Mesh]int)
	internNext  int
)

// internMesh assigns (and memoizes) a stable small integer id for a
// Mesh's pointer identity, scoped to this process's registry
// bookkeeping only — it carries no meaning outside couplingdata.
func internMesh(mesh *types.Mesh) int {
	internMutex.Lock()
	defer internMutex.Unlock()
	if id, ok := internIDs[mesh]; ok {
		return id
	}
	id := internNext
	internNext++
	internIDs[mesh] = id
	return id
}
