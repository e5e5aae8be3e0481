package pass

import (
	"github.com/DarioCorno/skengio/common"
	"github.com/DarioCorno/skengio/engine/mesh"
	"github.com/DarioCorno/skengio/engine/scene"
)

// visibleMeshes filters the scene's meshes against the camera frustum using
// each mesh's bounding sphere. The depth prepass and the geometry pass both
// cull with the same predicate, which keeps the geometry pass's equal-depth
// test consistent with the depth the prepass wrote.
func visibleMeshes(scn scene.Scene) []mesh.Mesh {
	cam := scn.Camera()
	meshes := scn.Meshes()
	if cam == nil {
		return meshes
	}

	vp := cam.ViewProjectionMatrix()
	frustum := common.ExtractFrustumFromMatrix(vp[:])

	visible := make([]mesh.Mesh, 0, len(meshes))
	for _, m := range meshes {
		t := m.Transform()
		radius := m.BoundingRadius() * maxScale(t.Scale())
		if frustum.ContainsSphere(t.Position(), radius) {
			visible = append(visible, m)
		}
	}
	return visible
}

func maxScale(s [3]float32) float32 {
	m := s[0]
	if s[1] > m {
		m = s[1]
	}
	if s[2] > m {
		m = s[2]
	}
	if m < 0 {
		m = -m
	}
	return m
}
