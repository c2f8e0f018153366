// roadgen is a CLI for sampling, planning and generating road scenes.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/roadcraft/internal/config"
	"github.com/Faultbox/roadcraft/internal/logger"
	"github.com/Faultbox/roadcraft/internal/placement"
	"github.com/Faultbox/roadcraft/internal/road"
	"github.com/Faultbox/roadcraft/internal/scene"
	"github.com/Faultbox/roadcraft/pkg/arclen"
	"github.com/Faultbox/roadcraft/pkg/curve"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "sample":
		err = cmdSample(cfg, args)
	case "plan":
		err = cmdPlan(cfg, args)
	case "generate", "gen":
		err = cmdGenerate(cfg, args)
	case "intersect":
		err = cmdIntersect(cfg, args)
	case "config":
		err = cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`roadgen - procedural road geometry

Usage:
  roadgen [flags] <command> [args]

Commands:
  sample <scene.yaml> <road>           Print arc-length samples of a road
  plan <scene.yaml> <road> <width>     Plan elements of the given width along a road
  generate <scene.yaml>                Generate lanes, prefab lines and intersections
  intersect <scene.yaml>               Print intersection connections and main roads
  config [save [path]]                 Print or save the effective configuration

Flags:
  -config <path>   Config file
  -debug           Debug logging
  -log-file <path> Log file
  -detail <n>      Samples per world unit
  -elevation       3D arc length
  -seed <n>        Random seed
  -terrain <mode>  Default terrain mode

Examples:
  roadgen sample scene.yaml main
  roadgen -seed 7 plan scene.yaml main 2.5
  roadgen -terrain per_column generate scene.yaml`)
}

func loadScene(cfg *config.Config, path string) (*scene.Scene, error) {
	doc, err := scene.Load(path)
	if err != nil {
		return nil, err
	}
	dopts, err := cfg.DeformOptions()
	if err != nil {
		return nil, err
	}
	return scene.Build(doc, scene.Defaults{
		Spacing:      cfg.Spacing(),
		Terrain:      dopts.Terrain,
		Intersection: cfg.IntersectionOptions(),
		SnapLift:     cfg.Generation.SnapLift,
		SnapDistance: cfg.Generation.SnapDistance,
	})
}

func cmdSample(cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: roadgen sample <scene.yaml> <road>")
	}
	s, err := loadScene(cfg, args[0])
	if err != nil {
		return err
	}
	r, err := s.Road(args[1])
	if err != nil {
		return err
	}

	opts := cfg.Sampling()
	path, err := arclen.BuildInterval(r.Curve, curve.WholeInterval(), opts)
	if err != nil {
		return err
	}
	out := sampleOutput{Road: r.ID, Length: path.Length()}
	for i := range r.Curve.SegmentCount() {
		l, err := arclen.SegmentLength(r.Curve, i, opts)
		if err != nil {
			return err
		}
		out.Segments = append(out.Segments, l)
	}
	for _, p := range path.Points {
		out.Points = append(out.Points, pointOutput{Param: p.Param, Distance: p.Distance, Position: vec(p.Position)})
	}
	return printYAML(out)
}

func cmdPlan(cfg *config.Config, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: roadgen plan <scene.yaml> <road> <width>")
	}
	width, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("width: %w", err)
	}
	s, err := loadScene(cfg, args[0])
	if err != nil {
		return err
	}
	r, err := s.Road(args[1])
	if err != nil {
		return err
	}

	session := road.NewSession(cfg.Generation.Seed)
	p := placement.New(placement.OffsetPerSegment, curve.Profile{}, cfg.Sampling(), session.SeedFor(r.ID))
	recs, err := p.Plan(r.Curve, cfg.Spacing(), width, curve.WholeInterval())
	if err != nil {
		return err
	}
	out := make([]recordOutput, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recordOutput{
			Segment:    rec.Segment,
			Percentage: rec.Percentage,
			Start:      vec(rec.StartPoint),
			Main:       vec(rec.MainPoint),
			End:        vec(rec.EndPoint),
			StartParam: rec.StartParam,
			EndParam:   rec.EndParam,
		})
	}
	return printYAML(out)
}

func cmdGenerate(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Print every instance")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: roadgen generate [-v] <scene.yaml>")
	}
	s, err := loadScene(cfg, fs.Arg(0))
	if err != nil {
		return err
	}
	dopts, err := cfg.DeformOptions()
	if err != nil {
		return err
	}

	sink := road.NewMemorySink()
	gen := road.NewGenerator(s.Assets, sink, s.World, road.Options{
		Sampling:      cfg.Sampling(),
		Deform:        dopts,
		CornerSamples: cfg.Deform.CornerSamples,
	})
	session := road.NewSession(cfg.Generation.Seed)
	logger.Info("generating scene",
		zap.String("session", session.ID),
		zap.Int("roads", len(s.Roads)),
		zap.Int("intersections", len(s.Intersections)),
	)

	var (
		reports []*road.Report
		failed  []error
	)
	for _, r := range s.Roads {
		reps, err := gen.Regenerate(session, r)
		reports = append(reports, reps...)
		if err != nil {
			failed = append(failed, fmt.Errorf("road %s: %w", r.ID, err))
		}
	}
	for _, x := range s.Intersections {
		rep, err := gen.RegenerateIntersection(session, x)
		reports = append(reports, rep)
		if err != nil {
			failed = append(failed, fmt.Errorf("intersection %s: %w", x.ID, err))
			continue
		}
		rep, err = gen.RegenerateTurnMarkings(session, x, s)
		reports = append(reports, rep)
		if err != nil {
			failed = append(failed, fmt.Errorf("turn markings %s: %w", x.ID, err))
		}
	}

	out := generateOutput{Session: session.ID}
	for _, rep := range reports {
		ro := reportOutput{Owner: rep.Owner, Run: rep.Run, Placed: rep.Placed, Skipped: rep.Skipped, Rays: rep.Rays, CacheHits: rep.CacheHits}
		if rep.Errs != nil {
			ro.Errors = rep.Errs.Error()
		}
		if *verbose {
			for _, inst := range sink.Instances(rep.Owner) {
				ro.Instances = append(ro.Instances, instanceOutput{
					Index:    inst.Index,
					Asset:    string(inst.Asset),
					Layer:    inst.Layer.String(),
					Position: vec(inst.Transform.Position),
					Matrix:   inst.Transform.Matrix(),
					Vertices: len(inst.Mesh.Positions),
				})
			}
		}
		out.Reports = append(out.Reports, ro)
	}
	for _, err := range failed {
		out.Failures = append(out.Failures, err.Error())
	}
	if err := printYAML(out); err != nil {
		return err
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d owners failed", len(failed))
	}
	return nil
}

func cmdIntersect(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: roadgen intersect <scene.yaml>")
	}
	s, err := loadScene(cfg, args[0])
	if err != nil {
		return err
	}

	var out []intersectionOutput
	for _, x := range s.Intersections {
		x.Rebuild()
		xo := intersectionOutput{ID: x.ID}
		for _, c := range x.Connections {
			co := connectionOutput{Road: c.Road.String(), Bearing: c.Bearing, Left: vec(c.LeftPoint), Right: vec(c.RightPoint)}
			for _, l := range c.Lanes {
				co.Lanes = append(co.Lanes, l.Index)
			}
			xo.Connections = append(xo.Connections, co)
		}
		for _, m := range x.MainRoads {
			mo := mainRoadOutput{Start: m.StartIndex, End: m.EndIndex, Generated: m.Generated}
			for _, p := range m.LaneMap {
				mo.Lanes = append(mo.Lanes, [2]int{p.From, p.To})
			}
			xo.MainRoads = append(xo.MainRoads, mo)
		}
		xo.Outline = len(x.Outline(cfg.Deform.CornerSamples))
		out = append(out, xo)
	}
	return printYAML(out)
}

func cmdConfig(cfg *config.Config, args []string) error {
	if len(args) > 0 && args[0] == "save" {
		if len(args) > 1 {
			return cfg.SaveTo(args[1])
		}
		return cfg.Save()
	}
	return printYAML(cfg)
}

func printYAML(v any) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
