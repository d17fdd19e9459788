package transport

import "github.com/jabolina/precouple/pkg/precouple/types"

// MeshHandshake is the fixed, version-less wire handshake exchanged at connection setup:
// dimensionality, participant name, mesh identity, vertex count, then
// the coordinate array. There is no magic number and no version tag —
// an explicit compatibility constraint of the existing protocol this
// runtime interoperates with.
type MeshHandshake struct {
	Dimensions      int32
	ParticipantName string
	MeshID          int32
	VertexCount     int32
	Coordinates     []float64
}

// SendMeshHandshake writes a MeshHandshake in the fixed field order the
// wire format mandates.
func SendMeshHandshake(t Transport, h MeshHandshake) error {
	if err := t.SendInt(h.Dimensions); err != nil {
		return err
	}
	if err := t.SendString(h.ParticipantName); err != nil {
		return err
	}
	if err := t.SendInt(h.MeshID); err != nil {
		return err
	}
	if err := t.SendInt(h.VertexCount); err != nil {
		return err
	}
	return t.SendDoubleArray(h.Coordinates)
}

// ReceiveMeshHandshake reads a MeshHandshake written by
// SendMeshHandshake, verifying the vertex count against the coordinate
// array length actually received.
func ReceiveMeshHandshake(t Transport) (MeshHandshake, error) {
	var h MeshHandshake
	var err error
	if h.Dimensions, err = t.ReceiveInt(); err != nil {
		return h, err
	}
	if h.ParticipantName, err = t.ReceiveString(); err != nil {
		return h, err
	}
	if h.MeshID, err = t.ReceiveInt(); err != nil {
		return h, err
	}
	if h.VertexCount, err = t.ReceiveInt(); err != nil {
		return h, err
	}
	if h.Coordinates, err = t.ReceiveDoubleArray(); err != nil {
		return h, err
	}
	if int32(len(h.Coordinates)) != h.VertexCount*h.Dimensions {
		return h, types.ProtocolError(h.ParticipantName, 0, "mesh handshake vertex count mismatch")
	}
	return h, nil
}
