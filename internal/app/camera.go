package app

import (
	"math"

	"github.com/philipparndt/cncview/pkg/geometry"
)

// orbitPosition returns the camera position for the given orbit angles
// around target. angleX is elevation, angleY is azimuth.
func orbitPosition(target geometry.Vector3, distance, angleX, angleY float64) geometry.Vector3 {
	return target.Add(geometry.NewVector3(
		distance*math.Cos(angleX)*math.Sin(angleY),
		distance*math.Sin(angleX),
		distance*math.Cos(angleX)*math.Cos(angleY),
	))
}

// setCameraAngles keeps target and distance and moves the camera to the
// given orbit angles
func (app *App) setCameraAngles(angleX, angleY float64) {
	cam := app.session.Scene.Camera()
	distance := cam.Position.Distance(cam.Target)
	app.session.Scene.SetCamera(orbitPosition(cam.Target, distance, angleX, angleY), cam.Target)
}

// setCameraTopView looks straight down onto the work area
func (app *App) setCameraTopView() {
	app.setCameraAngles(math.Pi/2, 0)
}

// setCameraFrontView looks along -Z
func (app *App) setCameraFrontView() {
	app.setCameraAngles(0, 0)
}

// setCameraBackView looks along +Z
func (app *App) setCameraBackView() {
	app.setCameraAngles(0, math.Pi)
}

// setCameraLeftView looks along +X
func (app *App) setCameraLeftView() {
	app.setCameraAngles(0, -math.Pi/2)
}

// setCameraRightView looks along -X
func (app *App) setCameraRightView() {
	app.setCameraAngles(0, math.Pi/2)
}

// resetCameraView frames the current path
func (app *App) resetCameraView() {
	app.session.ResetView()
}
