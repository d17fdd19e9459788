package transport

import "testing"

func TestMeshHandshake_RoundTripsOverAPipe(t *testing.T) {
	client, server := newPipePair(t)
	defer client.Close()
	defer server.Close()

	sent := MeshHandshake{
		Dimensions:      2,
		ParticipantName: "FluidSolver",
		MeshID:          3,
		VertexCount:     2,
		Coordinates:     []float64{0, 0, 1, 1},
	}

	errs := make(chan error, 1)
	go func() { errs <- SendMeshHandshake(server, sent) }()

	got, err := ReceiveMeshHandshake(client)
	if err != nil {
		t.Fatalf("ReceiveMeshHandshake: %v", err)
	}
	if err := <-errs; err != nil {
		t.Fatalf("SendMeshHandshake: %v", err)
	}
	if got.ParticipantName != sent.ParticipantName || got.MeshID != sent.MeshID || got.VertexCount != sent.VertexCount {
		t.Fatalf("unexpected handshake %+v", got)
	}
	if len(got.Coordinates) != 4 || got.Coordinates[3] != 1 {
		t.Fatalf("unexpected coordinates %v", got.Coordinates)
	}
}

func TestMeshHandshake_VertexCountMismatchIsRejected(t *testing.T) {
	client, server := newPipePair(t)
	defer client.Close()
	defer server.Close()

	bad := MeshHandshake{
		Dimensions:  2,
		MeshID:      1,
		VertexCount: 5, // does not match len(Coordinates)
		Coordinates: []float64{0, 0},
	}

	errs := make(chan error, 1)
	go func() { errs <- SendMeshHandshake(server, bad) }()

	if _, err := ReceiveMeshHandshake(client); err == nil {
		t.Fatalf("expected a vertex count mismatch error")
	}
	<-errs
}
