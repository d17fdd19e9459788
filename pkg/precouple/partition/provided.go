package partition

import (
	"github.com/jabolina/precouple/pkg/precouple/definition"
	"github.com/jabolina/precouple/pkg/precouple/intracomm"
	"github.com/jabolina/precouple/pkg/precouple/transport"
	"github.com/jabolina/precouple/pkg/precouple/types"
)

// BoundingBoxOf computes a mesh's bounding box from its vertex set.
func BoundingBoxOf(mesh *types.Mesh) types.BoundingBox {
	box := types.NewBoundingBox(mesh.Dimensions)
	for _, v := range mesh.Vertices {
		box.ExpandByVertex(v)
	}
	return box
}

// GatherGlobalMesh assembles the provided-side's global mesh by
// concatenating every rank's local vertices, in rank order, over comm.
// Only the master's return value carries the assembled mesh; secondary
// ranks get nil. The provided side owns 100% of its mesh, so
// VertexDistribution here simply lists each rank's contiguous
// contributed range.
func GatherGlobalMesh(comm intracomm.IntraComm, localMesh *types.Mesh) (*types.Mesh, error) {
	flatCoords := make([]float64, 0, len(localMesh.Vertices)*localMesh.Dimensions)
	for _, v := range localMesh.Vertices {
		flatCoords = append(flatCoords, v.Coords...)
	}
	// Prefix the rank's vertex count so the master can split the
	// gathered buffer back into per-rank runs.
	header := []float64{float64(len(localMesh.Vertices))}
	gathered, err := comm.Gather(append(header, flatCoords...))
	if err != nil {
		return nil, err
	}
	if !comm.IsMaster() {
		return nil, nil
	}

	global, err := types.NewMesh(localMesh.Name, localMesh.Dimensions)
	if err != nil {
		return nil, err
	}
	global.VertexDistribution = make(types.VertexDistribution)
	global.VertexOffsets = make([]int, comm.Size())

	i := 0
	globalIdx := 0
	for rank := 0; rank < comm.Size(); rank++ {
		count := int(gathered[i])
		i++
		global.VertexOffsets[rank] = globalIdx
		var owned []int
		for n := 0; n < count; n++ {
			coords := gathered[i : i+localMesh.Dimensions]
			i += localMesh.Dimensions
			id, err := global.AddVertex(coords)
			if err != nil {
				return nil, err
			}
			global.Vertices[id].GlobalIndex = globalIdx
			global.Vertices[id].Owner = true
			owned = append(owned, id)
			globalIdx++
		}
		global.VertexDistribution[rank] = owned
	}
	return global, nil
}

// ProvidedSide runs the provided-side half of the partitioning protocol
// for one participant over a Transport connection to the received
// side's master. Only the master rank performs the
// Transport I/O; every rank participates in the IntraComm collectives
// so the global mesh/box data can be assembled and the resulting
// FeedbackMap distributed back out.
func ProvidedSide(comm intracomm.IntraComm, localMesh *types.Mesh, peerMaster transport.Transport, log definition.Logger) (FeedbackMap, error) {
	localBox := BoundingBoxOf(localMesh)
	gatheredBoxes, err := comm.Gather(flattenBox(localBox))
	if err != nil {
		return nil, err
	}

	globalMesh, err := GatherGlobalMesh(comm, localMesh)
	if err != nil {
		return nil, err
	}

	var feedback FeedbackMap
	if comm.IsMaster() {
		boxes := unflattenBoxes(gatheredBoxes)
		if err := sendBoxesAndMesh(peerMaster, boxes, globalMesh); err != nil {
			return nil, err
		}
		needs, err := receiveFeedbackRequests(peerMaster, comm.Size())
		if err != nil {
			return nil, err
		}
		feedback = BuildFeedbackMap(needs)
		log.Infof("provided side %s: feedback map built for %d senders", localMesh.Name, len(feedback))
	}

	// Broadcast the master-built FeedbackMap to every local rank so
	// m2n has a routing table regardless of which rank it runs on.
	encoded, err := comm.Broadcast(encodeFeedbackMap(feedback, comm.Size()))
	if err != nil {
		return nil, err
	}
	return decodeFeedbackMap(encoded), nil
}

func sendBoxesAndMesh(t transport.Transport, boxes []types.BoundingBox, mesh *types.Mesh) error {
	if err := t.SendInt(int32(len(boxes))); err != nil {
		return err
	}
	for _, b := range boxes {
		if err := t.SendDoubleArray(flattenBox(b)); err != nil {
			return err
		}
	}
	coords := make([]float64, 0, len(mesh.Vertices)*mesh.Dimensions)
	for _, v := range mesh.Vertices {
		coords = append(coords, v.Coords...)
	}
	return transport.SendMeshHandshake(t, transport.MeshHandshake{
		Dimensions:      int32(mesh.Dimensions),
		ParticipantName: mesh.Name,
		MeshID:          0,
		VertexCount:     int32(len(mesh.Vertices)),
		Coordinates:     coords,
	})
}

// receiveFeedbackRequests reads the received side's feedback batch: an
// entry count, then that many (receiverRank int, list of needed sender
// ranks) entries, one per received-side rank. The count is taken from
// the wire because each participant's group size is independent; the
// second parameter is not used.
func receiveFeedbackRequests(t transport.Transport, _ int) (map[int][]int, error) {
	needs := make(map[int][]int)
	count, err := t.ReceiveInt()
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < count; i++ {
		receiverRank, err := t.ReceiveInt()
		if err != nil {
			return nil, err
		}
		senders, err := t.ReceiveIntArray()
		if err != nil {
			return nil, err
		}
		out := make([]int, len(senders))
		for j, s := range senders {
			out[j] = int(s)
		}
		needs[int(receiverRank)] = out
	}
	return needs, nil
}

// encodeFeedbackMap flattens a FeedbackMap keyed 0..size-1 into a
// float64 slice suitable for IntraComm.Broadcast: for each sender rank,
// a count followed by its receiver ranks.
func encodeFeedbackMap(fb FeedbackMap, size int) []float64 {
	var out []float64
	for rank := 0; rank < size; rank++ {
		receivers := fb[rank]
		out = append(out, float64(len(receivers)))
		for _, r := range receivers {
			out = append(out, float64(r))
		}
	}
	return out
}

func decodeFeedbackMap(flat []float64) FeedbackMap {
	fb := make(FeedbackMap)
	rank := 0
	for i := 0; i < len(flat); rank++ {
		n := int(flat[i])
		i++
		if n > 0 {
			receivers := make([]int, n)
			for j := 0; j < n; j++ {
				receivers[j] = int(flat[i+j])
			}
			fb[rank] = receivers
		}
		i += n
	}
	return fb
}
