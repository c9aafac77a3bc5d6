// Command gpucanvas-demo renders a TOML scene to a PNG file.
//
// Usage:
//
//	gpucanvas-demo -scene scene.toml -output out.png
//	gpucanvas-demo -backend software -output - | display
package main

import (
	"flag"
	"image/png"
	"io"
	"log"
	"os"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/term"

	"github.com/gogpu/gpucanvas"
	"github.com/gogpu/gpucanvas/backend"
	"github.com/gogpu/gpucanvas/render"
	"github.com/gogpu/gpucanvas/text"
)

func main() {
	scenePath := flag.String("scene", "", "TOML scene file (built-in scene if empty)")
	backendName := flag.String("backend", backend.BackendSoftware, "render backend: auto, wgpu or software")
	output := flag.String("output", "gpucanvas-demo.png", "output PNG file, - for stdout")
	width := flag.Int("width", 0, "override scene width")
	height := flag.Int("height", 0, "override scene height")
	flag.Parse()

	data := defaultScene
	if *scenePath != "" {
		b, err := os.ReadFile(*scenePath)
		if err != nil {
			log.Fatalf("Failed to read scene: %v", err)
		}
		data = string(b)
	}
	sc, err := parseScene(data)
	if err != nil {
		log.Fatalf("Failed to parse scene: %v", err)
	}
	if *width > 0 {
		sc.Width = *width
	}
	if *height > 0 {
		sc.Height = *height
	}

	var w io.Writer
	if *output == "-" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			log.Fatalf("`-` should be used with a pipe for stdout")
		}
		w = os.Stdout
	} else {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Failed to create output: %v", err)
		}
		defer f.Close()
		w = f
	}

	device, err := openDevice(*backendName)
	if err != nil {
		log.Fatalf("Failed to open backend: %v", err)
	}
	if err := renderScene(device, sc, w); err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
	if *output != "-" {
		log.Printf("Saved to %s", *output)
	}
}

func openDevice(name string) (render.Device, error) {
	if name == "auto" {
		return backend.InitDefault()
	}
	return backend.Get(name)
}

// renderScene draws sc on a fresh surface of device and encodes it as PNG.
func renderScene(device render.Device, sc *scene, w io.Writer) error {
	ctx, err := gpucanvas.NewContext(device)
	if err != nil {
		return err
	}
	defer ctx.Release()

	surf, err := ctx.NewSurface(sc.Width, sc.Height)
	if err != nil {
		return err
	}
	defer surf.Release()

	tf, err := text.ParseSFNT(goregular.TTF)
	if err != nil {
		return err
	}
	if err := sc.draw(surf.Canvas(), text.NewFont(tf, 16)); err != nil {
		return err
	}
	img, err := surf.ReadPixels()
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
