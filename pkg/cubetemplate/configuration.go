package cubetemplate

import "github.com/Faultbox/octomesh/pkg/voxel"

// ConfigurationID returns the exposed-face mask of cell (x, y, z), or -1 when
// the cell is empty. A face is exposed when the neighbor across it is empty
// or outside the grid.
func ConfigurationID(g *voxel.Grid, x, y, z int) int {
	if !g.Occupied(x, y, z) {
		return -1
	}

	id := 0
	if !g.Occupied(x+1, y, z) {
		id |= int(FacePosX)
	}
	if !g.Occupied(x-1, y, z) {
		id |= int(FaceNegX)
	}
	if !g.Occupied(x, y+1, z) {
		id |= int(FacePosY)
	}
	if !g.Occupied(x, y-1, z) {
		id |= int(FaceNegY)
	}
	if !g.Occupied(x, y, z+1) {
		id |= int(FacePosZ)
	}
	if !g.Occupied(x, y, z-1) {
		id |= int(FaceNegZ)
	}
	return id
}
