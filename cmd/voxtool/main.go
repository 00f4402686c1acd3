// voxtool is a CLI utility for voxel worlds, cube templates and chunk meshing.
package main

import (
	"flag"
	"fmt"
	"math/bits"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/octomesh/internal/config"
	"github.com/Faultbox/octomesh/internal/mesher"
	"github.com/Faultbox/octomesh/internal/scene"
	"github.com/Faultbox/octomesh/pkg/cubetemplate"
	"github.com/Faultbox/octomesh/pkg/voxel"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "gen-world":
		err = cmdGenWorld(args)
	case "gen-template":
		err = cmdGenTemplate(args)
	case "template":
		err = cmdTemplate(args)
	case "mesh":
		err = cmdMesh(args)
	case "build":
		err = cmdBuild(args)
	case "config-init":
		err = cmdConfigInit(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`voxtool - voxel world and chunk mesher utility

Usage:
  voxtool <command> [options]

Commands:
  info <world.gz>                          Show world information
  gen-world [-edge N] [-kind K] <out.gz>   Generate a world (sphere, terrain, solid)
  gen-template <out.ctpl>                  Write the basic cube template
  template <file.ctpl>                     Show template information
  mesh [-level L] [-at x,y,z] <world.gz>   Mesh one chunk and print its statistics
  build [-point x,y,z] <world.gz>          Run one build pass and print tree statistics
  config-init [path]                       Write the default config

Examples:
  voxtool gen-world -edge 256 -kind terrain world000.gz
  voxtool mesh -level 4 -at 128,0,128 world000.gz
  voxtool build -point 128,64,128 world000.gz`)
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: voxtool info <world.gz>")
	}

	g, err := voxel.ReadFile(args[0])
	if err != nil {
		return err
	}

	occupied := g.CountOccupied()
	total := len(g.Bytes())
	fmt.Printf("World:    %s\n", args[0])
	fmt.Printf("Edge:     %d (%s)\n", g.Edge(), levelFor(g.Edge()))
	fmt.Printf("Occupied: %d of %d (%.1f%%)\n", occupied, total, 100*float64(occupied)/float64(total))

	materials := make(map[byte]int)
	for _, b := range g.Bytes() {
		if b != voxel.Empty {
			materials[b]++
		}
	}
	keys := make([]int, 0, len(materials))
	for m := range materials {
		keys = append(keys, int(m))
	}
	sort.Ints(keys)
	if len(keys) > 0 {
		fmt.Println()
		fmt.Println("Cells by material:")
		for _, m := range keys {
			fmt.Printf("  %3d  %d\n", m, materials[byte(m)])
		}
	}
	return nil
}

func cmdGenWorld(args []string) error {
	fs := flag.NewFlagSet("gen-world", flag.ExitOnError)
	edge := fs.Int("edge", voxel.MaxEdge, "World edge in voxels (power of two)")
	kind := fs.String("kind", "terrain", "World shape: sphere, terrain or solid")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: voxtool gen-world [-edge N] [-kind K] <out.gz>")
	}
	if *edge <= 0 || *edge&(*edge-1) != 0 {
		return fmt.Errorf("edge %d is not a power of two", *edge)
	}

	g, err := voxel.New(*edge)
	if err != nil {
		return err
	}

	e := float32(*edge)
	switch *kind {
	case "sphere":
		g.Sphere(mgl32.Vec3{e / 2, e / 2, e / 2}, e*0.4, 1)
	case "terrain":
		g.Terrain(func(x, z int) int {
			h := e/4 + e/8*(math32.Sin(float32(x)*0.05)+math32.Cos(float32(z)*0.07))
			return int(h)
		}, 1)
	case "solid":
		g.Fill([3]int{0, 0, 0}, [3]int{*edge, *edge, *edge}, 1)
	default:
		return fmt.Errorf("unknown world kind %q", *kind)
	}

	if err := voxel.WriteFile(fs.Arg(0), g); err != nil {
		return err
	}
	fmt.Printf("Wrote %s: edge %d, %d occupied cells\n", fs.Arg(0), *edge, g.CountOccupied())
	return nil
}

func cmdGenTemplate(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: voxtool gen-template <out.ctpl>")
	}
	t := cubetemplate.Basic()
	if err := t.WriteFile(args[0]); err != nil {
		return err
	}
	fmt.Printf("Wrote %s: version %s, %d configurations\n", args[0], cubetemplate.CurrentVersion, len(t.VertexCounts))
	return nil
}

func cmdTemplate(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: voxtool template <file.ctpl>")
	}

	t, err := cubetemplate.ReadFile(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Template:       %s\n", args[0])
	fmt.Printf("Configurations: %d\n", len(t.VertexCounts))
	fmt.Printf("Max vertices:   %d\n", t.MaxVertices)
	fmt.Printf("Total vertices: %d\n", t.TotalVertices())
	fmt.Println()
	fmt.Println("Configurations by exposed faces:")

	byFaces := make(map[int][]uint32)
	for id, c := range t.VertexCounts {
		n := bits.OnesCount(uint(id))
		byFaces[n] = append(byFaces[n], c)
	}
	for n := 0; n <= len(cubetemplate.Faces); n++ {
		counts := byFaces[n]
		if len(counts) == 0 {
			continue
		}
		fmt.Printf("  %d faces: %2d configurations, %v vertices\n", n, len(counts), uniq(counts))
	}
	return nil
}

func cmdMesh(args []string) error {
	fs := flag.NewFlagSet("mesh", flag.ExitOnError)
	level := fs.Int("level", 4, "Chunk level (0 = Cube1)")
	at := fs.String("at", "0,0,0", "Chunk voxel offset x,y,z")
	tmplPath := fs.String("template", "", "Cube template (default: basic cube)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: voxtool mesh [-level L] [-at x,y,z] <world.gz>")
	}
	offset, err := parseInts(*at)
	if err != nil {
		return err
	}

	m, _, err := open(fs.Arg(0), *tmplPath)
	if err != nil {
		return err
	}
	defer m.Shutdown()

	s, err := m.GenerateChunk(offset, mesher.ChunkLevel(*level))
	if err != nil {
		return err
	}
	if s == nil {
		fmt.Printf("%s chunk at %v is empty\n", mesher.ChunkLevel(*level), offset)
		return nil
	}

	c := mesher.BuildCollider(s)
	fmt.Printf("Chunk:     %s at %v\n", s.Level, offset)
	fmt.Printf("Vertices:  %d\n", s.VertexCount())
	fmt.Printf("Triangles: %d\n", s.TriangleCount())
	fmt.Printf("Bounds:    %v - %v\n", s.Bounds.Min, s.Bounds.Max)
	fmt.Printf("Geometry:  %v - %v\n", c.Bounds.Min, c.Bounds.Max)
	fmt.Printf("BVH nodes: %d\n", len(c.Nodes))
	return nil
}

func cmdBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	var points pointList
	fs.Var(&points, "point", "Interaction point x,y,z (repeatable)")
	tmplPath := fs.String("template", "", "Cube template (default: basic cube)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: voxtool build [-point x,y,z] <world.gz>")
	}

	m, sc, err := open(fs.Arg(0), *tmplPath)
	if err != nil {
		return err
	}
	defer m.Shutdown()

	if _, err := m.AddRoot(sc.Root(), mgl32.Vec3{}); err != nil {
		return err
	}
	if err := m.Trigger(points); err != nil {
		return err
	}
	m.Coordinator().Wait()
	if err := m.Coordinator().LastErr(); err != nil {
		return err
	}

	pass := m.Coordinator().LastStats()
	tree, err := m.Stats()
	if err != nil {
		return err
	}
	objects := sc.Stats()

	fmt.Printf("Pass:      %v, %d surfaces, %d empty, %d skipped\n", pass.Duration, pass.Surfaces, pass.Empty, pass.Exhausted)
	fmt.Printf("Nodes:     %d (%d internal, %d leaves)\n", tree.Nodes, tree.Internal, tree.Leaves)
	fmt.Printf("Surfaces:  %d, %d vertices\n", tree.Surfaces, tree.Vertices)
	fmt.Printf("Colliders: %d\n", objects.Colliders)
	fmt.Printf("Scratch:   %.1f MB\n", float64(tree.ScratchBytes)/(1024*1024))
	return nil
}

func cmdConfigInit(args []string) error {
	cfg := config.Default()
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", args[0])
		return nil
	}
	path, err := cfg.Save()
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// open loads a world and template into a mesher sized to the world.
func open(worldPath, tmplPath string) (*mesher.Mesher, *scene.Scene, error) {
	g, err := voxel.ReadFile(worldPath)
	if err != nil {
		return nil, nil, err
	}
	t := cubetemplate.Basic()
	if tmplPath != "" {
		if t, err = cubetemplate.ReadFile(tmplPath); err != nil {
			return nil, nil, err
		}
	}

	opts := mesher.DefaultOptions()
	opts.MaxLevel = levelFor(g.Edge())
	sc := scene.New()
	m, err := mesher.Initialize(g, t, mesher.Collaborators{Factory: sc}, opts)
	if err != nil {
		return nil, nil, err
	}
	return m, sc, nil
}

func levelFor(edge int) mesher.ChunkLevel {
	return mesher.ChunkLevel(bits.Len(uint(edge)) - 1)
}

func parseInts(s string) ([3]int, error) {
	var v [3]int
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("expected x,y,z, got %q", s)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return v, fmt.Errorf("bad coordinate %q: %w", p, err)
		}
		v[i] = n
	}
	return v, nil
}

// pointList collects repeated -point flags.
type pointList []mgl32.Vec3

func (l *pointList) String() string {
	return fmt.Sprint(*l)
}

func (l *pointList) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return fmt.Errorf("expected x,y,z, got %q", s)
	}
	var p mgl32.Vec3
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return err
		}
		p[i] = float32(f)
	}
	*l = append(*l, p)
	return nil
}

func uniq(counts []uint32) []uint32 {
	seen := make(map[uint32]bool)
	var out []uint32
	for _, c := range counts {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
