/*
Package uvpaint paints onto the texture of a 3D model in real time. Pointer positions are
projected onto the model's UV space, where brush stamps are accumulated and composited over
a base canvas image. Once too many stamps pile up, or on request, the canvas is flattened
and saved, and the last saved texture is reloaded on the next start.

The package provides a command line interface replaying recorded painting sessions.
To check the supported commands type:

	$ uvpaint --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"

		"github.com/uvpaint/uvpaint"
		"github.com/uvpaint/uvpaint/prefs"
		"github.com/uvpaint/uvpaint/scene"
	)

	func main() {
		world := &scene.World{
			Camera: scene.Camera{
				// Initialize the viewing camera
			},
		}
		world.Add(scene.NewMeshCollider("canvas", scene.Quad()))

		sess, err := uvpaint.NewSession(uvpaint.SessionConfig{
			Canvas:      uvpaint.DefaultCanvasConfig(),
			Raycaster:   world,
			Persistence: uvpaint.NewPersistence(uvpaint.Fixed{Path: "painted.png"}, prefs.NewMemory()),
		})
		if err != nil {
			fmt.Printf("Error creating the session: %s", err.Error())
			return
		}
		defer sess.Close()

		// Call sess.Tick once per frame with the pointer state and the brush color.
	}
*/
package uvpaint
