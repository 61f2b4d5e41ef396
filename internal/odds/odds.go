// Package odds holds the probability primitives shared by the match engine
// and the playoff bracket.
//
// Every constant here is part of the replay contract. Products are wrapped in
// explicit float64 conversions so the compiler cannot fuse them into FMA
// instructions, which would change results on some architectures.
package odds

// Goal probability bounds.
const (
	MinGoalProbability = 0.005
	MaxGoalProbability = 0.22
)

// BaseShotChance is the shot chance before tactics are applied.
const BaseShotChance = 0.18

// dangerBase maps danger tier to base goal probability.
var dangerBase = [...]float64{1: 0.02, 2: 0.04, 3: 0.06, 4: 0.09, 5: 0.12}

// defaultDangerBase applies to tiers outside 1..5.
const defaultDangerBase = 0.05

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt limits v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AttackBias is the push advantage a side brings from rating and tactics.
//
//	(rating-1000)/1000*0.08 + (aggression-50)/100*0.04 + (risk-50)/100*0.03
func AttackBias(rating, aggression, risk int) float64 {
	r := float64(float64(rating-1000) / 1000 * 0.08)
	a := float64(float64(aggression-50) / 100 * 0.04)
	k := float64(float64(risk-50) / 100 * 0.03)
	return r + a + k
}

// ShotBoost is the tactics adjustment added to BaseShotChance.
//
//	(aggression-50)/100*0.05 + (shootBias-50)/100*0.08
func ShotBoost(aggression, shootBias int) float64 {
	a := float64(float64(aggression-50) / 100 * 0.05)
	s := float64(float64(shootBias-50) / 100 * 0.08)
	return a + s
}

// ShotChance is the probability that a possession ends in a shot attempt.
func ShotChance(aggression, shootBias int) float64 {
	return BaseShotChance + ShotBoost(aggression, shootBias)
}

// DangerBase returns the base goal probability for a danger tier.
func DangerBase(danger int) float64 {
	if danger < 1 || danger >= len(dangerBase) {
		return defaultDangerBase
	}
	return dangerBase[danger]
}

// GoalProbability combines danger, shooter skill, goalie skill and attacking
// bias, clamped to [MinGoalProbability, MaxGoalProbability].
func GoalProbability(danger, shot, goalieSkill int, bias float64) float64 {
	shotFactor := float64(shot-50) / 200
	goalieFactor := -float64(goalieSkill-50) / 220
	biasFactor := float64(bias * 0.03)
	p := DangerBase(danger) + shotFactor + goalieFactor + biasFactor
	return Clamp(p, MinGoalProbability, MaxGoalProbability)
}

// SaveProbability derives the save chance from the goal chance.
func SaveProbability(goalProb float64) float64 {
	return Clamp(0.78-float64(goalProb*0.5), 0, 1)
}

// Maximum rating edge in a head-to-head win probability.
const maxRatingEdge = 0.25

// WinProbability is the chance the home side wins a single playoff game.
//
//	0.5 + clamp((home-away)/400, -0.25, 0.25)
func WinProbability(homeRating, awayRating int) float64 {
	edge := Clamp(float64(homeRating-awayRating)/400, -maxRatingEdge, maxRatingEdge)
	return 0.5 + edge
}
