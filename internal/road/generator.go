package road

import (
	"fmt"
	gomath "math"
	"math/rand/v2"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/roadcraft/internal/deform"
	"github.com/Faultbox/roadcraft/internal/intersection"
	"github.com/Faultbox/roadcraft/internal/logger"
	"github.com/Faultbox/roadcraft/internal/placement"
	"github.com/Faultbox/roadcraft/internal/spatial"
	"github.com/Faultbox/roadcraft/pkg/arclen"
	"github.com/Faultbox/roadcraft/pkg/math"
)

// weldTolerance is the distance gap below which consecutive elements share
// an edge.
const weldTolerance = 1e-6

// Options are the generation knobs supplied at call time.
type Options struct {
	Sampling arclen.Options
	// Deform carries the ray settings; bend and terrain modes come from
	// each prefab line.
	Deform        deform.Options
	CornerSamples int
}

// DefaultOptions returns the standard generation settings.
func DefaultOptions() Options {
	return Options{
		Sampling:      arclen.DefaultOptions(),
		Deform:        deform.DefaultOptions(),
		CornerSamples: 8,
	}
}

// Report summarizes one regeneration run. Errs aggregates the recoverable
// per-element failures; those elements were skipped.
type Report struct {
	Run       string
	Owner     string
	Placed    int
	Skipped   int
	Rays      int
	CacheHits int
	Errs      error
}

// Generator runs regenerations against external collaborators.
type Generator struct {
	assets AssetResolver
	sink   Sink
	world  deform.Raycaster
	opts   Options
}

// NewGenerator creates a generator. world may be nil when no line conforms
// to terrain.
func NewGenerator(assets AssetResolver, sink Sink, world deform.Raycaster, opts Options) *Generator {
	return &Generator{assets: assets, sink: sink, world: world, opts: opts}
}

// Regenerate rebuilds the lanes and every prefab line of r. A failing line
// does not stop its siblings; all failures are returned together.
func (g *Generator) Regenerate(s *Session, r *Road) ([]*Report, error) {
	var (
		reports []*Report
		errs    error
	)
	rep, err := g.RegenerateLanes(s, r)
	reports = append(reports, rep)
	errs = multierr.Append(errs, err)

	for _, line := range r.Lines {
		rep, err := g.RegenerateLine(s, r, line)
		reports = append(reports, rep)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %q: %w", line.Name, err))
		}
	}
	return reports, errs
}

// RegenerateLine replaces the instances of one prefab line. Errors that
// invalidate the whole line are returned and leave the sink untouched.
func (g *Generator) RegenerateLine(s *Session, r *Road, line *PrefabLine) (*Report, error) {
	owner := r.ID + "/" + line.Name
	rep := &Report{Run: s.NewRun(), Owner: owner}
	log := logger.ForRun(rep.Run, owner, s.ID)

	if err := r.Curve.Validate(); err != nil {
		return rep, err
	}
	if line.MainPrefab == "" {
		return rep, ErrNoPrefab
	}
	main, err := g.assets.Resolve(line.MainPrefab)
	if err != nil {
		return rep, err
	}
	if err := main.Mesh.Validate(); err != nil {
		return rep, fmt.Errorf("main prefab %q: %w", line.MainPrefab, err)
	}

	xScale := line.XScale
	if xScale == 0 {
		xScale = 1
	}
	axis := line.Rotation.ForwardAxis()
	width := extent(main.Mesh, axis) * xScale

	seed := s.SeedFor(owner)
	planner := placement.New(line.OffsetMode, line.Offset, g.opts.Sampling, seed)
	recs, err := planner.Plan(r.Curve, line.spacing(width), width, line.Interval)
	if err != nil {
		return rep, err
	}

	dopts := g.opts.Deform
	dopts.Bend = line.bendMode()
	dopts.ForwardAxis = axis
	dopts.YOffset = line.YOffset
	dopts.Terrain = line.terrainMode()
	deformer := deform.New(r.Curve, g.world, dopts)
	deforming := dopts.Bend != deform.BendNone || dopts.Terrain != deform.TerrainNone

	// Yaw jitter only applies to rigid prefabs.
	rng := rand.New(rand.NewPCG(seed, ^seed))
	jitter := line.RotationRandomization
	if dopts.Bend != deform.BendNone {
		jitter = 0
	}

	var (
		instances = make([]Instance, 0, len(recs))
		errs      error
		prev      deform.Edge
		assets    = map[AssetRef]Asset{line.MainPrefab: main}
	)
	skip := func(i int, ref AssetRef, err error) {
		errs = multierr.Append(errs, fmt.Errorf("element %d (%s): %w", i, ref, err))
		log.Warn("skipping element", zap.Int("element", i), zap.String("prefab", string(ref)), zap.Error(err))
		rep.Skipped++
		prev = nil
	}

	for i, rec := range recs {
		ref := line.prefabFor(i, len(recs))
		asset, ok := assets[ref]
		if !ok {
			asset, err = g.assets.Resolve(ref)
			if err != nil {
				skip(i, ref, err)
				continue
			}
			assets[ref] = asset
		}
		if err := asset.Mesh.Validate(); err != nil {
			skip(i, ref, err)
			continue
		}

		var yaw float64
		if jitter > 0 {
			yaw = (rng.Float64()*2 - 1) * jitter
		}
		xf := line.transform(rec, xScale, yaw)

		// Spacing wider than the element leaves a gap; nothing to weld to.
		if i > 0 && gomath.Abs(recs[i-1].EndDistance-rec.StartDistance) > weldTolerance {
			prev = nil
		}

		var mesh *deform.Mesh
		if deforming {
			mesh, prev, err = deformer.Deform(asset.Mesh, rec, xf, prev)
			if err != nil {
				skip(i, ref, err)
				continue
			}
		} else {
			mesh = asset.Mesh.Clone()
		}
		instances = append(instances, Instance{
			Owner:     owner,
			Index:     i,
			Asset:     ref,
			Handle:    asset.Handle,
			Transform: xf,
			Mesh:      mesh,
			Layer:     spatial.LayerPrefabLine,
		})
	}

	if err := g.sink.Replace(owner, instances); err != nil {
		return rep, fmt.Errorf("replacing instances of %s: %w", owner, err)
	}
	st := deformer.Stats()
	rep.Placed = len(instances)
	rep.Rays, rep.CacheHits = st.Rays, st.CacheHits
	rep.Errs = errs

	log.Info("prefab line regenerated",
		zap.Int("placed", rep.Placed),
		zap.Int("skipped", rep.Skipped),
		zap.Float64("width", width),
		zap.Int("rays", st.Rays),
	)
	return rep, nil
}

// RegenerateLanes replaces the lane surface instances of r.
func (g *Generator) RegenerateLanes(s *Session, r *Road) (*Report, error) {
	owner := r.ID + "/lanes"
	rep := &Report{Run: s.NewRun(), Owner: owner}
	log := logger.ForRun(rep.Run, owner, s.ID)

	if err := r.Curve.Validate(); err != nil {
		return rep, err
	}

	var (
		instances []Instance
		errs      error
	)
	for i, lane := range r.Lanes {
		mesh, err := LaneMesh(r, i, g.opts.Sampling)
		if err == nil && lane.Material != "" {
			var asset Asset
			if asset, err = g.assets.Resolve(lane.Material); err == nil {
				instances = append(instances, laneInstance(owner, i, lane, asset.Handle, mesh))
				continue
			}
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("lane %d: %w", i, err))
			log.Warn("skipping lane", zap.Int("lane", i), zap.Error(err))
			rep.Skipped++
			continue
		}
		instances = append(instances, laneInstance(owner, i, lane, nil, mesh))
	}

	if err := g.sink.Replace(owner, instances); err != nil {
		return rep, fmt.Errorf("replacing instances of %s: %w", owner, err)
	}
	rep.Placed = len(instances)
	rep.Errs = errs
	log.Info("lanes regenerated", zap.Int("placed", rep.Placed), zap.Int("skipped", rep.Skipped))
	return rep, nil
}

func laneInstance(owner string, i int, lane *Lane, handle any, mesh *deform.Mesh) Instance {
	return Instance{
		Owner:     owner,
		Index:     i,
		Asset:     lane.Material,
		Handle:    handle,
		Transform: deform.IdentityTransform(),
		Mesh:      mesh,
		Layer:     spatial.LayerRoad,
	}
}

// RegenerateIntersection rebuilds the connection order, main roads and
// junction surface of x.
func (g *Generator) RegenerateIntersection(s *Session, x *intersection.Intersection) (*Report, error) {
	owner := "intersection/" + x.ID
	rep := &Report{Run: s.NewRun(), Owner: owner}
	log := logger.ForRun(rep.Run, owner, s.ID)

	x.Rebuild()
	var instances []Instance
	if mesh := x.Mesh(g.opts.CornerSamples); len(mesh.Positions) > 0 {
		instances = append(instances, Instance{
			Owner:     owner,
			Transform: deform.IdentityTransform(),
			Mesh:      mesh,
			Layer:     spatial.LayerIntersection,
		})
	}
	if err := g.sink.Replace(owner, instances); err != nil {
		return rep, fmt.Errorf("replacing instances of %s: %w", owner, err)
	}
	rep.Placed = len(instances)
	log.Info("intersection regenerated",
		zap.Int("connections", len(x.Connections)),
		zap.Int("main_roads", len(x.MainRoads)),
	)
	return rep, nil
}

// prefabFor picks the start prefab for the first element, the end prefab
// for the last, and the main prefab otherwise.
func (l *PrefabLine) prefabFor(i, n int) AssetRef {
	switch {
	case i == 0 && l.StartPrefab != "":
		return l.StartPrefab
	case i == n-1 && l.EndPrefab != "":
		return l.EndPrefab
	default:
		return l.MainPrefab
	}
}

// transform places an element at the centre of its record, facing the
// line's rotation direction plus yaw degrees.
func (l *PrefabLine) transform(rec placement.Record, xScale, yaw float64) deform.Transform {
	ys := l.YScale.EvaluateOr(rec.Percentage, 1)
	zs := l.ZScale.EvaluateOr(rec.Percentage, 1)

	var (
		dir   math.Vec3
		scale math.Vec3
	)
	switch l.Rotation {
	case RotateRight:
		dir, scale = rec.Left.Neg(), math.Vec3{X: xScale, Y: ys, Z: zs}
	case RotateForwards:
		dir, scale = rec.Forward, math.Vec3{X: zs, Y: ys, Z: xScale}
	case RotateBackwards:
		dir, scale = rec.Forward.Neg(), math.Vec3{X: zs, Y: ys, Z: xScale}
	default:
		dir, scale = rec.Left, math.Vec3{X: xScale, Y: ys, Z: zs}
	}

	return deform.Transform{
		Position: rec.StartPoint.Lerp(rec.EndPoint, 0.5).Add(math.Vec3{Y: l.YOffset}),
		Rotation: math.QuatFromYaw(math.YawOf(dir) + yaw),
		Scale:    scale,
	}
}

// extent returns the mesh size along axis.
func extent(m *deform.Mesh, axis deform.Axis) float64 {
	lo, hi := m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		lo.X, hi.X = min(lo.X, p.X), max(hi.X, p.X)
		lo.Z, hi.Z = min(lo.Z, p.Z), max(hi.Z, p.Z)
	}
	if axis == deform.AxisZ {
		return hi.Z - lo.Z
	}
	return hi.X - lo.X
}
