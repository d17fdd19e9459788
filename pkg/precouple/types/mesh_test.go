package types

import "testing"

func TestMesh_AddVertexRejectsWrongDimensionality(t *testing.T) {
	mesh, err := NewMesh("m", 2)
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}
	if _, err := mesh.AddVertex([]float64{1, 2, 3}); err == nil {
		t.Fatalf("expected an error adding a 3D vertex to a 2D mesh")
	}
}

func TestMesh_AddEdgeRejectsUnknownVertex(t *testing.T) {
	mesh, err := NewMesh("m", 2)
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}
	if _, err := mesh.AddVertex([]float64{0, 0}); err != nil {
		t.Fatalf("AddVertex: %v", err)
	}
	if _, err := mesh.AddEdge(0, 99); err == nil {
		t.Fatalf("expected an error referencing an unknown vertex")
	}
}

func TestMesh_AllocateDataValuesSizesToVertexCount(t *testing.T) {
	mesh, err := NewMesh("m", 2)
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := mesh.AddVertex([]float64{float64(i), 0}); err != nil {
			t.Fatalf("AddVertex: %v", err)
		}
	}
	temperature := NewData("Temperature", 1)
	force := NewData("Force", 2)
	mesh.AddData(temperature)
	mesh.AddData(force)

	mesh.AllocateDataValues()

	if len(temperature.Values) != 3 {
		t.Fatalf("expected 3 scalar values, got %d", len(temperature.Values))
	}
	if len(force.Values) != 6 {
		t.Fatalf("expected 6 vector components, got %d", len(force.Values))
	}
}

func TestMesh_DataByNameFindsRegisteredField(t *testing.T) {
	mesh, err := NewMesh("m", 2)
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}
	d := NewData("Force", 2)
	mesh.AddData(d)

	found, ok := mesh.DataByName("Force")
	if !ok || found.ID != d.ID {
		t.Fatalf("expected to find Force, got (%v, %v)", found, ok)
	}
	if _, ok := mesh.DataByName("Ghost"); ok {
		t.Fatalf("expected no match for an unregistered name")
	}
}

func TestMesh_ReorderQuadIfConvexRejectsBrokenRing(t *testing.T) {
	mesh, err := NewMesh("m", 2)
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := mesh.AddVertex([]float64{float64(i), 0}); err != nil {
			t.Fatalf("AddVertex: %v", err)
		}
	}
	e0, _ := mesh.AddEdge(0, 1)
	e1, _ := mesh.AddEdge(1, 2)
	e2, _ := mesh.AddEdge(2, 3)
	e3, _ := mesh.AddEdge(3, 0)
	quadID, err := mesh.AddQuad([4]int{e0, e1, e2, e3})
	if err != nil {
		t.Fatalf("AddQuad: %v", err)
	}

	if !ReorderQuadIfConvex(&mesh.Quads[quadID], mesh) {
		t.Fatalf("expected a closed 4-edge ring to pass the convexity ring check")
	}

	danglingEdge := Quad{ID: 99, Edges: [4]int{e0, e1, e2, 9999}}
	if ReorderQuadIfConvex(&danglingEdge, mesh) {
		t.Fatalf("expected a quad referencing a nonexistent edge to fail the ring check")
	}
}
