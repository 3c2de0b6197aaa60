package world

// AIKind is the behaviour tag carried by each Behavior variant.
type AIKind string

const (
	AIAggressive AIKind = "aggressive"
	AIDefensive  AIKind = "defensive"
	AISupport    AIKind = "support"
	AISwarm      AIKind = "swarm"
	AIRanged     AIKind = "ranged"
	AIBoss       AIKind = "boss"
	AIElite      AIKind = "elite"
)

// Behavior is a closed sum type over the enemy AI variants. Each variant
// carries only the parameters it needs; the ai package dispatches over them
// with a type switch.
type Behavior interface {
	Kind() AIKind
	sealed()
}

// Aggressive chases the player once inside AggroRadius and gives up beyond
// DeaggroRadius.
type Aggressive struct {
	AggroRadius   float64
	DeaggroRadius float64
}

// Defensive keeps RetreatRadius between itself and the player, backing off
// along a path rotated by OffsetAngle.
type Defensive struct {
	RetreatRadius float64
	OffsetAngle   float64
}

// Support seeks the most injured ally below InjuredRatio of its health.
type Support struct {
	InjuredRatio float64
	SeekRadius   float64
}

// Swarm follows the centroid of allies within CohesionRadius, biased toward
// the player.
type Swarm struct {
	CohesionRadius float64
}

// Ranged closes distance until within AttackRange, then holds position.
type Ranged struct {
	AttackRange float64
}

// BossBehavior always hunts the player and holds at SlamRange to use abilities.
type BossBehavior struct {
	SlamRange float64
}

// Elite always hunts the player and charges with ChargeBoost extra speed once
// inside ChargeRadius.
type Elite struct {
	ChargeRadius float64
	ChargeBoost  float64
}

func (Aggressive) Kind() AIKind   { return AIAggressive }
func (Defensive) Kind() AIKind    { return AIDefensive }
func (Support) Kind() AIKind      { return AISupport }
func (Swarm) Kind() AIKind        { return AISwarm }
func (Ranged) Kind() AIKind       { return AIRanged }
func (BossBehavior) Kind() AIKind { return AIBoss }
func (Elite) Kind() AIKind        { return AIElite }

func (Aggressive) sealed()   {}
func (Defensive) sealed()    {}
func (Support) sealed()      {}
func (Swarm) sealed()        {}
func (Ranged) sealed()       {}
func (BossBehavior) sealed() {}
func (Elite) sealed()        {}
