package camera

import (
	"math"
	"sync"

	"github.com/DarioCorno/skengio/common"
	"github.com/DarioCorno/skengio/engine/transform"
)

// poleEpsilon keeps the orbit polar angle away from the spherical poles,
// where the look-at up vector degenerates.
const poleEpsilon = 0.01

type cameraImpl struct {
	mu *sync.Mutex

	transform transform.Transform
	target    [3]float32
	up        [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	minDistance float32
	maxDistance float32

	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32

	viewDirty           bool
	projectionDirty     bool
	viewProjectionDirty bool

	viewVersion       uint64
	projectionVersion uint64
}

// Camera defines the interface for the scene camera.
//
// The camera owns a Transform for its position, a look-at target, and
// perspective lens parameters. The view, projection, and view-projection
// matrices are each cached behind their own dirty bit: moving the camera or
// target invalidates only the view (and the combined matrix); changing lens
// parameters invalidates only the projection (and the combined matrix). Each
// getter recomputes at most its own stale matrix.
//
// ViewVersion and ProjectionVersion are generation counters incremented on
// each effective invalidation; the lighting pass snapshots them to decide
// when camera uniforms need re-uploading.
type Camera interface {
	// Transform returns the spatial component carrying the camera's position.
	//
	// Returns:
	//   - transform.Transform: the camera's transform
	Transform() transform.Transform

	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Target returns the world-space look-at target.
	//
	// Returns:
	//   - [3]float32: target as (x, y, z)
	Target() [3]float32

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ViewMatrix returns the view matrix, recomputing it only when the
	// position, target, or up vector changed since the last call.
	//
	// Returns:
	//   - [16]float32: the view matrix (column-major)
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the projection matrix, recomputing it only
	// when a lens parameter changed since the last call.
	//
	// Returns:
	//   - [16]float32: the projection matrix (column-major)
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns the combined projection * view matrix,
	// recomputing it only when either factor changed since the last call.
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix (column-major)
	ViewProjectionMatrix() [16]float32

	// ViewVersion returns a generation counter incremented whenever the
	// view matrix is invalidated.
	//
	// Returns:
	//   - uint64: the current view generation
	ViewVersion() uint64

	// ProjectionVersion returns a generation counter incremented whenever
	// the projection matrix is invalidated.
	//
	// Returns:
	//   - uint64: the current projection generation
	ProjectionVersion() uint64

	// LookAt points the camera at a new target without moving it.
	//
	// Parameters:
	//   - x, y, z: the new target position
	LookAt(x, y, z float32)

	// SetPositionAndTarget moves the camera and retargets it in one call,
	// invalidating the view once.
	//
	// Parameters:
	//   - px, py, pz: the new camera position
	//   - tx, ty, tz: the new target position
	SetPositionAndTarget(px, py, pz, tx, ty, tz float32)

	// Orbit rotates the camera around its target on a sphere. The polar
	// angle is clamped away from the poles so the view never degenerates,
	// no matter how large the elevation delta.
	//
	// Parameters:
	//   - azimuthDelta: horizontal rotation in radians
	//   - elevationDelta: vertical rotation in radians
	Orbit(azimuthDelta, elevationDelta float32)

	// Zoom rescales the camera-to-target distance by the given factor,
	// clamped to the configured [minDistance, maxDistance] range.
	//
	// Parameters:
	//   - factor: the distance multiplier (values below 1 move closer)
	Zoom(factor float32)

	// Pan translates the camera and target together along the camera's
	// local right and up axes.
	//
	// Parameters:
	//   - h: offset along the right axis
	//   - v: offset along the up axis
	Pan(h, v float32)

	// Dolly translates the camera and target together along the camera's
	// forward axis.
	//
	// Parameters:
	//   - distance: offset along the view direction
	Dolly(distance float32)

	// Truck translates the camera and target together along the camera's
	// right axis.
	//
	// Parameters:
	//   - distance: offset along the right axis
	Truck(distance float32)

	// Pedestal translates the camera and target together along the camera's
	// up axis.
	//
	// Parameters:
	//   - distance: offset along the up axis
	Pedestal(distance float32)

	// SetFov sets the vertical field of view in radians.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height).
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetNear sets the near clipping plane distance.
	//
	// Parameters:
	//   - near: near plane distance
	SetNear(near float32)

	// SetFar sets the far clipping plane distance.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float32)

	// ScreenRay unprojects a screen point in normalized device coordinates
	// into a world-space ray through the scene.
	//
	// Parameters:
	//   - ndcX, ndcY: screen point in NDC, each in [-1, 1]
	//
	// Returns:
	//   - origin: the ray origin (the camera position)
	//   - direction: the normalized ray direction
	ScreenRay(ndcX, ndcY float32) (origin, direction [3]float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera at (0, 0, 10) looking at the origin with
// default perspective settings, then applies the provided options. All
// matrices start dirty and compose on first access.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:          &sync.Mutex{},
		transform:   transform.NewTransform(transform.WithPosition(0, 0, 10)),
		up:          [3]float32{0, 1, 0},
		fov:         45.0 * (math.Pi / 180.0), // radians
		aspect:      1.0,
		near:        0.1,
		far:         100.0,
		minDistance: 1.0,
		maxDistance: 1000.0,
	}
	for _, option := range options {
		option(c)
	}
	c.invalidateView()
	c.invalidateProjection()
	return c
}

func (c *cameraImpl) Transform() transform.Transform {
	return c.transform
}

func (c *cameraImpl) Position() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transform.Position()
}

func (c *cameraImpl) Target() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshView()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshProjection()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshViewProjection()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) ViewVersion() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewVersion
}

func (c *cameraImpl) ProjectionVersion() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionVersion
}

func (c *cameraImpl) LookAt(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = [3]float32{x, y, z}
	c.invalidateView()
}

func (c *cameraImpl) SetPositionAndTarget(px, py, pz, tx, ty, tz float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transform.SetPosition(px, py, pz)
	c.target = [3]float32{tx, ty, tz}
	c.invalidateView()
}

func (c *cameraImpl) Orbit(azimuthDelta, elevationDelta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.transform.Position()
	offset := common.Sub3(p, c.target)
	ox, oy, oz := offset[0], offset[1], offset[2]

	radius := common.Length3(offset)
	if radius < 1e-8 {
		return
	}

	theta := float32(math.Atan2(float64(ox), float64(oz)))
	phi := float32(math.Acos(float64(common.Clamp(oy/radius, -1, 1))))

	theta += azimuthDelta
	phi += elevationDelta
	phi = common.Clamp(phi, poleEpsilon, math.Pi-poleEpsilon)

	sinPhi := float32(math.Sin(float64(phi)))
	c.transform.SetPosition(
		c.target[0]+radius*sinPhi*float32(math.Sin(float64(theta))),
		c.target[1]+radius*float32(math.Cos(float64(phi))),
		c.target[2]+radius*sinPhi*float32(math.Cos(float64(theta))),
	)
	c.invalidateView()
}

func (c *cameraImpl) Zoom(factor float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.transform.Position()
	offset := common.Sub3(p, c.target)

	radius := common.Length3(offset)
	if radius < 1e-8 {
		return
	}

	newRadius := common.Clamp(radius*factor, c.minDistance, c.maxDistance)
	scaled := common.Scale3(offset, newRadius/radius)
	c.transform.SetPosition(
		c.target[0]+scaled[0],
		c.target[1]+scaled[1],
		c.target[2]+scaled[2],
	)
	c.invalidateView()
}

func (c *cameraImpl) Pan(h, v float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rx, ry, rz, ux, uy, uz, _, _, _ := c.localAxes()
	c.translateBoth(
		rx*h+ux*v,
		ry*h+uy*v,
		rz*h+uz*v,
	)
}

func (c *cameraImpl) Dolly(distance float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _, _, _, _, _, fx, fy, fz := c.localAxes()
	c.translateBoth(fx*distance, fy*distance, fz*distance)
}

func (c *cameraImpl) Truck(distance float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rx, ry, rz, _, _, _, _, _, _ := c.localAxes()
	c.translateBoth(rx*distance, ry*distance, rz*distance)
}

func (c *cameraImpl) Pedestal(distance float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _, _, ux, uy, uz, _, _, _ := c.localAxes()
	c.translateBoth(ux*distance, uy*distance, uz*distance)
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.invalidateProjection()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.invalidateProjection()
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.invalidateProjection()
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.invalidateProjection()
}

func (c *cameraImpl) ScreenRay(ndcX, ndcY float32) (origin, direction [3]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refreshViewProjection()

	var invVP [16]float32
	common.Invert4(invVP[:], c.viewProjectionMatrix[:])

	nearPoint := unproject(invVP[:], ndcX, ndcY, -1)
	farPoint := unproject(invVP[:], ndcX, ndcY, 1)

	origin = c.transform.Position()
	direction = common.Normalize3(common.Sub3(farPoint, nearPoint))
	return origin, direction
}

// unproject maps an NDC point through an inverted view-projection matrix and
// applies the perspective divide.
func unproject(invVP []float32, ndcX, ndcY, ndcZ float32) [3]float32 {
	v := common.TransformVec4(invVP, ndcX, ndcY, ndcZ, 1)
	if v[3] == 0 {
		return [3]float32{v[0], v[1], v[2]}
	}
	return [3]float32{v[0] / v[3], v[1] / v[3], v[2] / v[3]}
}

// translateBoth moves the camera position and target by the same offset,
// preserving the orbit relationship. Caller must hold the mutex.
func (c *cameraImpl) translateBoth(dx, dy, dz float32) {
	c.transform.Translate(dx, dy, dz)
	c.target[0] += dx
	c.target[1] += dy
	c.target[2] += dz
	c.invalidateView()
}

// localAxes computes the camera's local coordinate axes consistent with the
// LookAt matrix. Returns right, up, and forward vectors; all components are
// zero when position and target coincide. Caller must hold the mutex.
func (c *cameraImpl) localAxes() (rx, ry, rz, ux, uy, uz, fx, fy, fz float32) {
	p := c.transform.Position()

	// backward = normalize(position - target), matching LookAt's z-axis
	bx := p[0] - c.target[0]
	by := p[1] - c.target[1]
	bz := p[2] - c.target[2]
	bLen := common.Length3([3]float32{bx, by, bz})
	if bLen < 1e-8 {
		return
	}
	bx /= bLen
	by /= bLen
	bz /= bLen

	// right = normalize(cross(worldUp, backward)) where worldUp = (0, 1, 0)
	rx = bz
	rz = -bx
	rLen := float32(math.Sqrt(float64(rx*rx + rz*rz)))
	if rLen < 1e-8 {
		return
	}
	rx /= rLen
	rz /= rLen

	// up = cross(backward, right), matching LookAt's y-axis
	ux = by*rz - bz*ry
	uy = bz*rx - bx*rz
	uz = bx*ry - by*rx

	// forward = -backward
	fx = -bx
	fy = -by
	fz = -bz
	return
}

// invalidateView marks the view and combined matrices stale and bumps the
// view generation. Caller must hold the mutex.
func (c *cameraImpl) invalidateView() {
	c.viewDirty = true
	c.viewProjectionDirty = true
	c.viewVersion++
}

// invalidateProjection marks the projection and combined matrices stale and
// bumps the projection generation. Caller must hold the mutex.
func (c *cameraImpl) invalidateProjection() {
	c.projectionDirty = true
	c.viewProjectionDirty = true
	c.projectionVersion++
}

// refreshView recomputes the view matrix iff dirty. Caller must hold the mutex.
func (c *cameraImpl) refreshView() {
	if !c.viewDirty {
		return
	}
	p := c.transform.Position()
	common.LookAt(c.viewMatrix[:],
		p[0], p[1], p[2],
		c.target[0], c.target[1], c.target[2],
		c.up[0], c.up[1], c.up[2],
	)
	c.viewDirty = false
}

// refreshProjection recomputes the projection matrix iff dirty. Caller must
// hold the mutex.
func (c *cameraImpl) refreshProjection() {
	if !c.projectionDirty {
		return
	}
	common.Perspective(c.projectionMatrix[:], c.fov, c.aspect, c.near, c.far)
	c.projectionDirty = false
}

// refreshViewProjection recomputes the combined matrix iff either factor is
// stale. Caller must hold the mutex.
func (c *cameraImpl) refreshViewProjection() {
	if !c.viewProjectionDirty {
		return
	}
	c.refreshView()
	c.refreshProjection()
	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
	c.viewProjectionDirty = false
}
