// Package mcl implements Monte Carlo Localization: estimating a robot's
// planar pose inside a known occupancy map by evolving a weighted
// population of pose hypotheses through a motion model, a likelihood-field
// sensor model, and importance resampling.
package mcl

import (
	"context"
	"math"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/greenteawarrior/mobile-robotics/occupancy"
	"github.com/greenteawarrior/mobile-robotics/spatialmath"
)

// Stage identifies a checkpoint within an update cycle at which the
// particle population is exported to a registered listener.
type Stage int

const (
	// StageRaw is the population as committed by the previous cycle,
	// exported just before a new cycle starts.
	StageRaw Stage = iota
	// StagePredicted is after the motion model advanced every particle.
	StagePredicted
	// StageWeighted is after sensor reweighting (or its explicit skip).
	StageWeighted
	// StageResampled is after the new generation was drawn.
	StageResampled
	// StageFinal is the committed population once a scan is fully
	// processed, exported whether or not a cycle ran.
	StageFinal
)

func (s Stage) String() string {
	switch s {
	case StageRaw:
		return "raw"
	case StagePredicted:
		return "predicted"
	case StageWeighted:
		return "weighted"
	case StageResampled:
		return "resampled"
	case StageFinal:
		return "final"
	default:
		return "unknown"
	}
}

// CloudListener receives an owned copy of the particle population at each
// export checkpoint. It runs synchronously within the update.
type CloudListener func(stage Stage, cloud []Particle)

type filterState int

const (
	stateUninitialized filterState = iota
	stateReady
	stateIdle
	stateUpdating
)

func (s filterState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateReady:
		return "ready"
	case stateIdle:
		return "idle"
	case stateUpdating:
		return "updating"
	default:
		return "unknown"
	}
}

// ParticleFilter owns the pose hypothesis population and runs the
// per-scan update pipeline against a precomputed distance field. It is
// constructed by and owned by the caller's event loop; methods are not
// safe for concurrent use.
type ParticleFilter struct {
	cfg    Config
	logger golog.Logger
	field  *occupancy.DistanceField

	motion *motionModel
	sensor *sensorModel
	rnd    *rand.Rand

	state     filterState
	cloud     []Particle
	lastOdom  spatialmath.Pose
	estimate  spatialmath.Pose
	mapToOdom spatialmath.Pose
	listener  CloudListener
}

// New returns a filter over the given distance field. The field must
// already be fully built; nothing is recomputed from the map afterwards.
func New(field *occupancy.DistanceField, cfg Config, logger golog.Logger) (*ParticleFilter, error) {
	if field == nil {
		return nil, errors.New("a distance field is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	src := rand.NewSource(seed)
	return &ParticleFilter{
		cfg:    cfg,
		logger: logger,
		field:  field,
		motion: newMotionModel(cfg, src),
		sensor: newSensorModel(cfg, field),
		rnd:    rand.New(src),
		state:  stateUninitialized,
	}, nil
}

// SetCloudListener registers the checkpoint export callback. Pass nil to
// stop exporting.
func (pf *ParticleFilter) SetCloudListener(listener CloudListener) {
	pf.listener = listener
}

// Cloud returns an owned copy of the current population.
func (pf *ParticleFilter) Cloud() []Particle {
	return cloneCloud(pf.cloud)
}

// Estimate returns the pose estimate as of the last committed state.
func (pf *ParticleFilter) Estimate() (spatialmath.Pose, error) {
	if pf.state == stateUninitialized {
		return spatialmath.Pose{}, ErrNotInitialized
	}
	return pf.estimate, nil
}

// MapToOdom returns the correction transform relating the map frame to
// the odometry frame, recomputed at every committed state. Composing it
// with a pose in the odometry frame yields that pose in the map frame.
func (pf *ParticleFilter) MapToOdom() (spatialmath.Pose, error) {
	if pf.state == stateUninitialized {
		return spatialmath.Pose{}, ErrNotInitialized
	}
	return pf.mapToOdom, nil
}

// Update processes one scan/odometry pair. The first pair initializes the
// population (uniformly over the map extent unless SetInitialPose ran
// first) and applies no motion; afterwards a full cycle runs only once
// the robot has moved beyond the configured thresholds, so that standing
// still does not repeatedly reweigh and starve the same population. It
// returns the pose estimate current after the call. Cancellation is
// honored between cycles only; a cycle that starts runs to completion.
func (pf *ParticleFilter) Update(ctx context.Context, scan LaserScan, odom spatialmath.Pose) (spatialmath.Pose, error) {
	if err := ctx.Err(); err != nil {
		return spatialmath.Pose{}, err
	}
	if pf.state == stateUninitialized {
		if err := pf.initializeUniform(odom); err != nil {
			return spatialmath.Pose{}, err
		}
		pf.logger.Debugw("particle population initialized", "particles", len(pf.cloud), "state", pf.state)
		return pf.estimate, nil
	}
	if !pf.moved(odom) {
		pf.publish(StageFinal, pf.cloud)
		return pf.estimate, nil
	}
	if err := pf.runCycle(ctx, scan, odom); err != nil {
		return spatialmath.Pose{}, err
	}
	return pf.estimate, nil
}

// SetInitialPose rescatters the population around an externally supplied
// approximate pose and commits it as the new state. The current odometry
// sample becomes the movement baseline.
func (pf *ParticleFilter) SetInitialPose(hint, odom spatialmath.Pose) error {
	xy := distuv.Normal{Mu: 0, Sigma: pf.cfg.PoseHintSigmaM, Src: pf.rnd}
	ang := distuv.Normal{Mu: 0, Sigma: pf.cfg.PoseHintSigmaRad, Src: pf.rnd}

	cloud := make([]Particle, pf.cfg.NumParticles)
	for i := range cloud {
		cloud[i] = Particle{
			Pose: spatialmath.Pose{
				X:     hint.X + xy.Rand(),
				Y:     hint.Y + xy.Rand(),
				Theta: spatialmath.NormalizeAngle(hint.Theta + ang.Rand()),
			},
			Weight: 1,
		}
	}
	if err := pf.commit(cloud, odom); err != nil {
		return err
	}
	pf.logger.Debugw("population rescattered around pose hint", "x", hint.X, "y", hint.Y, "theta", hint.Theta)
	return nil
}

// initializeUniform scatters the population uniformly over the map's
// world extent with uniform heading.
func (pf *ParticleFilter) initializeUniform(odom spatialmath.Pose) error {
	grid := pf.field.Grid()
	origin := grid.Origin()
	extent := grid.Extent()
	xDist := distuv.Uniform{Min: origin.X, Max: origin.X + extent.X, Src: pf.rnd}
	yDist := distuv.Uniform{Min: origin.Y, Max: origin.Y + extent.Y, Src: pf.rnd}
	angDist := distuv.Uniform{Min: -math.Pi, Max: math.Pi, Src: pf.rnd}

	cloud := make([]Particle, pf.cfg.NumParticles)
	for i := range cloud {
		cloud[i] = Particle{
			Pose:   spatialmath.Pose{X: xDist.Rand(), Y: yDist.Rand(), Theta: angDist.Rand()},
			Weight: 1,
		}
	}
	return pf.commit(cloud, odom)
}

// moved reports whether odometry has drifted beyond the update thresholds
// since the last committed state.
func (pf *ParticleFilter) moved(odom spatialmath.Pose) bool {
	return math.Hypot(odom.X-pf.lastOdom.X, odom.Y-pf.lastOdom.Y) > pf.cfg.DistanceThresholdM ||
		math.Abs(spatialmath.AngleDiff(odom.Theta, pf.lastOdom.Theta)) > pf.cfg.AngleThresholdRad
}

// runCycle runs the full predict → weigh → normalize → resample →
// estimate pipeline on a working copy of the population. Only a fully
// processed generation is committed; a cycle failing partway leaves the
// previous state observable.
func (pf *ParticleFilter) runCycle(ctx context.Context, scan LaserScan, odom spatialmath.Pose) error {
	pf.state = stateUpdating
	defer func() { pf.state = stateIdle }()
	start := time.Now()

	pf.publish(StageRaw, pf.cloud)
	cloud := cloneCloud(pf.cloud)

	delta := decomposeOdometry(pf.lastOdom, odom)
	pf.motion.predict(cloud, delta)
	pf.publish(StagePredicted, cloud)

	weighted, err := pf.sensor.update(ctx, cloud, scan)
	if err != nil {
		return err
	}
	if !weighted {
		pf.logger.Debugw("too few valid beams; keeping prior weights", "needed", pf.cfg.BeamSubsampleCount)
	}
	pf.publish(StageWeighted, cloud)

	if err := normalizeCloud(cloud); err != nil {
		return err
	}
	cloud = resample(cloud, pf.cfg.NumParticles, pf.rnd)
	pf.publish(StageResampled, cloud)

	if err := pf.commit(cloud, odom); err != nil {
		return err
	}
	pf.logger.Debugw("update cycle completed", "took", time.Since(start))
	return nil
}

// commit normalizes the generation, takes it as the current population,
// and refreshes the estimate, the map→odom correction, and the movement
// baseline.
func (pf *ParticleFilter) commit(cloud []Particle, odom spatialmath.Pose) error {
	if err := normalizeCloud(cloud); err != nil {
		return err
	}
	pf.cloud = cloud
	pf.estimate = estimatePose(cloud)
	pf.mapToOdom = pf.estimate.Compose(odom.Invert())
	pf.lastOdom = odom
	if pf.state == stateUninitialized {
		pf.state = stateReady
	}
	pf.publish(StageFinal, pf.cloud)
	return nil
}

func (pf *ParticleFilter) publish(stage Stage, cloud []Particle) {
	if pf.listener == nil {
		return
	}
	pf.listener(stage, cloneCloud(cloud))
}
