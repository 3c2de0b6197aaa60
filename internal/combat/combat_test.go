package combat

import (
	"math"
	"testing"

	"layer-survivors/server/internal/rng"
	"layer-survivors/server/internal/world"
)

func enemy(id uint64, archetype world.Archetype, x, y float64) *world.Enemy {
	return world.NewEnemy(id, archetype, 1, world.Vec2{X: x, Y: y}, nil)
}

func TestNearestEnemyFirstFoundWinsTies(t *testing.T) {
	a := enemy(1, world.ArchetypeNormal, 10, 0)
	b := enemy(2, world.ArchetypeNormal, -10, 0)
	c := enemy(3, world.ArchetypeNormal, 50, 0)
	if got := NearestEnemy(world.Vec2{}, []*world.Enemy{a, b, c}); got != a {
		t.Fatalf("nearest = %d, want 1", got.ID)
	}
	if got := NearestEnemy(world.Vec2{}, []*world.Enemy{b, a, c}); got != b {
		t.Fatalf("nearest = %d, want 2", got.ID)
	}
	a.Health = 0
	b.Health = 0
	if got := NearestEnemy(world.Vec2{}, []*world.Enemy{a, b, c}); got != c {
		t.Fatalf("dead enemies should be skipped")
	}
	if NearestEnemy(world.Vec2{}, nil) != nil {
		t.Fatalf("expected nil for empty slice")
	}
}

func TestFireVolleySpreadsEvenly(t *testing.T) {
	player := world.NewPlayer(world.Vec2{})
	player.ProjectileCount = 3
	var next uint64
	volley := FireVolley(VolleyConfig{
		Player: player,
		Target: world.Vec2{X: 100},
		Source: rng.NewScripted(0.99),
		NextID: func() uint64 { next++; return next },
	})
	if len(volley) != 3 {
		t.Fatalf("volley size = %d, want 3", len(volley))
	}
	wantAngles := []float64{-SpreadRadians, 0, SpreadRadians}
	for i, p := range volley {
		angle := math.Atan2(p.Velocity.Y, p.Velocity.X)
		if math.Abs(angle-wantAngles[i]) > 1e-9 {
			t.Fatalf("projectile %d angle = %v, want %v", i, angle, wantAngles[i])
		}
		if math.Abs(p.Velocity.Len()-world.DefaultProjectileSpeed) > 1e-9 {
			t.Fatalf("projectile %d speed = %v", i, p.Velocity.Len())
		}
		if p.Crit {
			t.Fatalf("0.99 roll should not crit at 5%% chance")
		}
		if p.ID != uint64(i+1) {
			t.Fatalf("projectile ids not allocated in order: %d", p.ID)
		}
	}
}

func TestFireVolleyCritAndCombo(t *testing.T) {
	player := world.NewPlayer(world.Vec2{})
	player.ComboMultiplier = 2
	volley := FireVolley(VolleyConfig{Player: player, Target: world.Vec2{Y: 1}, Source: rng.NewScripted(0.01)})
	if !volley[0].Crit {
		t.Fatalf("0.01 roll should crit")
	}
	want := world.DefaultPlayerDamage * 2 * world.DefaultPlayerCritDamage
	if math.Abs(volley[0].Damage-want) > 1e-9 {
		t.Fatalf("damage = %v, want %v", volley[0].Damage, want)
	}
}

func TestResolveProjectilesKillsAndPierceIsStrict(t *testing.T) {
	player := world.NewPlayer(world.Vec2{})
	first := enemy(1, world.ArchetypeNormal, 0, 0)
	second := enemy(2, world.ArchetypeNormal, 5, 0)
	third := enemy(3, world.ArchetypeNormal, 10, 0)
	p := &world.Projectile{ID: 1, Damage: 25, Size: 5, MaxPierce: 1}

	var fatal []uint64
	result := ResolveProjectiles(CollisionConfig{
		Player:      player,
		Enemies:     []*world.Enemy{first, second, third},
		Projectiles: []*world.Projectile{p},
		OnHit: func(hit HitRecord) {
			if hit.Fatal {
				fatal = append(fatal, hit.Enemy.ID)
			}
		},
	})

	if len(result.Projectiles) != 0 {
		t.Fatalf("projectile should be removed after pierce reaches maxPierce+1")
	}
	if p.Pierce != 2 {
		t.Fatalf("pierce = %d, want 2", p.Pierce)
	}
	if first.Health != 0 || second.Health != 0 {
		t.Fatalf("first two enemies should be dead: %v %v", first.Health, second.Health)
	}
	if third.Health != third.MaxHealth {
		t.Fatalf("third enemy should be untouched after projectile was spent")
	}
	if len(fatal) != 2 {
		t.Fatalf("fatal hits = %v", fatal)
	}
}

func TestProjectileAtMaxPierceSurvivesUntilNextHit(t *testing.T) {
	target := enemy(1, world.ArchetypeTank, 0, 0)
	p := &world.Projectile{Damage: 1, Size: 5, MaxPierce: 2, Pierce: 1}
	result := ResolveProjectiles(CollisionConfig{Enemies: []*world.Enemy{target}, Projectiles: []*world.Projectile{p}})
	if len(result.Projectiles) != 1 || p.Pierce != 2 {
		t.Fatalf("projectile at pierce == maxPierce must survive, pierce=%d", p.Pierce)
	}
	other := enemy(2, world.ArchetypeTank, 0, 0)
	result = ResolveProjectiles(CollisionConfig{Enemies: []*world.Enemy{other}, Projectiles: result.Projectiles})
	if len(result.Projectiles) != 0 || p.Pierce != 3 {
		t.Fatalf("projectile should be removed at pierce 3, got %d survivors", len(result.Projectiles))
	}
}

func TestProjectileDoesNotHitSameEnemyTwice(t *testing.T) {
	target := enemy(1, world.ArchetypeTank, 0, 0)
	p := &world.Projectile{Damage: 1, Size: 5, MaxPierce: 5}
	cfg := CollisionConfig{Enemies: []*world.Enemy{target}, Projectiles: []*world.Projectile{p}}
	ResolveProjectiles(cfg)
	ResolveProjectiles(cfg)
	if target.MaxHealth-target.Health != 1 {
		t.Fatalf("enemy hit more than once by the same projectile")
	}
}

func TestLifestealHealsFromDamageDealt(t *testing.T) {
	player := world.NewPlayer(world.Vec2{})
	player.Health = 50
	player.Lifesteal = 0.5
	target := enemy(1, world.ArchetypeNormal, 0, 0)
	p := &world.Projectile{Damage: 25, Size: 5}
	result := ResolveProjectiles(CollisionConfig{Player: player, Enemies: []*world.Enemy{target}, Projectiles: []*world.Projectile{p}})
	// Only 20 health was there to take.
	if result.Healed != 10 || player.Health != 60 {
		t.Fatalf("healed = %v health = %v, want 10/60", result.Healed, player.Health)
	}
}

func TestChainLightningArcsToNeighbours(t *testing.T) {
	player := world.NewPlayer(world.Vec2{})
	player.Effects.Stack(world.EffectChainLightning, 2)
	hit := enemy(1, world.ArchetypeTank, 0, 0)
	near := enemy(2, world.ArchetypeTank, 100, 0)
	far := enemy(3, world.ArchetypeTank, 1000, 0)
	p := &world.Projectile{Damage: 10, Size: 5}
	ResolveProjectiles(CollisionConfig{Player: player, Enemies: []*world.Enemy{hit, near, far}, Projectiles: []*world.Projectile{p}})
	if near.MaxHealth-near.Health != 5 {
		t.Fatalf("chain damage = %v, want 5", near.MaxHealth-near.Health)
	}
	if far.Health != far.MaxHealth {
		t.Fatalf("chain should not reach enemies beyond the radius")
	}
}

func TestExecuteFinishesWoundedEnemies(t *testing.T) {
	player := world.NewPlayer(world.Vec2{})
	player.Effects.Stack(world.EffectExecute, 0.2)
	target := enemy(1, world.ArchetypeTank, 0, 0)
	target.Health = target.MaxHealth * 0.25
	p := &world.Projectile{Damage: 5, Size: 5}
	ResolveProjectiles(CollisionConfig{Player: player, Enemies: []*world.Enemy{target}, Projectiles: []*world.Projectile{p}})
	if target.Alive() {
		t.Fatalf("enemy under execute threshold should die, health %v", target.Health)
	}
}

func TestOnHitStatusesApplied(t *testing.T) {
	player := world.NewPlayer(world.Vec2{})
	player.Effects.Stack(world.EffectPoisonRounds, 0.5)
	player.Effects.Stack(world.EffectStunRounds, 1)
	payload, stun := OnHitPayload(player)
	target := enemy(1, world.ArchetypeTank, 0, 0)
	p := &world.Projectile{Damage: 1, Size: 5, OnHit: payload, StunChance: stun}
	var applied []world.StatusKind
	ResolveProjectiles(CollisionConfig{
		Player: player, Enemies: []*world.Enemy{target}, Projectiles: []*world.Projectile{p},
		Source:   rng.NewScripted(0.5),
		OnStatus: func(_ *world.Enemy, effect world.StatusEffect) { applied = append(applied, effect.Kind) },
	})
	if !world.HasStatus(target.Status, world.StatusPoison) || !world.HasStatus(target.Status, world.StatusStun) {
		t.Fatalf("expected poison and stun, got %+v", target.Status)
	}
	if len(applied) != 2 {
		t.Fatalf("status hook calls = %v", applied)
	}
}

func TestResolvePlayerHitOrder(t *testing.T) {
	cases := []struct {
		name   string
		setup  func(p *world.Player)
		rolls  []float64
		magic  bool
		want   float64
		dodged bool
	}{
		{name: "dodged", setup: func(p *world.Player) { p.DodgeChance = 0.5 }, rolls: []float64{0.1}, want: 0, dodged: true},
		{name: "blocked and armored", setup: func(p *world.Player) { p.BlockChance = 0.5; p.Armor = 100 }, rolls: []float64{0.1}, want: 5},
		{name: "magic resisted", setup: func(p *world.Player) { p.MagicResistance = 0.5; p.Armor = 100 }, magic: true, want: 10},
		{name: "plain", setup: func(p *world.Player) {}, want: 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			player := world.NewPlayer(world.Vec2{})
			tc.setup(player)
			hit := ResolvePlayerHit(player, rng.NewScripted(append(tc.rolls, 0.9)...), 20, tc.magic)
			if hit.Dodged != tc.dodged {
				t.Fatalf("dodged = %v, want %v", hit.Dodged, tc.dodged)
			}
			if math.Abs(hit.Damage-tc.want) > 1e-9 {
				t.Fatalf("damage = %v, want %v", hit.Damage, tc.want)
			}
			if math.Abs(player.Health-(100-tc.want)) > 1e-9 {
				t.Fatalf("health = %v", player.Health)
			}
		})
	}
}

func TestSecondWindRevivesOnce(t *testing.T) {
	player := world.NewPlayer(world.Vec2{})
	player.Effects.Stack(world.EffectSecondWind, 1)
	hit := ResolvePlayerHit(player, nil, 500, false)
	if !hit.Revived || hit.Fatal || player.Health != 50 {
		t.Fatalf("expected revive at 50 health, got %+v health=%v", hit, player.Health)
	}
	hit = ResolvePlayerHit(player, nil, 500, false)
	if !hit.Fatal || player.Health != 0 {
		t.Fatalf("second lethal hit should be fatal, got %+v", hit)
	}
}

func TestContactDamageScalesWithDeltaAndReflectsThorns(t *testing.T) {
	player := world.NewPlayer(world.Vec2{})
	player.Effects.Stack(world.EffectThorns, 1)
	player.Effects.Stack(world.EffectPhasing, 0.5)
	attacker := enemy(1, world.ArchetypeNormal, 0, 0)
	hit := ContactDamage(player, attacker, 500)
	// 10 damage/s for half a second, halved by phasing.
	if math.Abs(hit.Damage-2.5) > 1e-9 {
		t.Fatalf("contact damage = %v, want 2.5", hit.Damage)
	}
	if math.Abs(attacker.Health-15) > 1e-9 {
		t.Fatalf("thorns should reflect the raw 5 damage, enemy health %v", attacker.Health)
	}
}

func TestEnergyShieldAbsorbs(t *testing.T) {
	player := world.NewPlayer(world.Vec2{})
	player.Effects.Stack(world.EffectEnergyShield, 0.5)
	player.Energy = 4
	hit := ResolvePlayerHit(player, nil, 20, false)
	if hit.Absorbed != 4 || hit.Damage != 16 || player.Energy != 0 {
		t.Fatalf("absorbed=%v damage=%v energy=%v", hit.Absorbed, hit.Damage, player.Energy)
	}
}

func TestComboMultiplier(t *testing.T) {
	player := world.NewPlayer(world.Vec2{})
	for i := 0; i < 10; i++ {
		RegisterKill(player)
	}
	if math.Abs(player.ComboMultiplier-1.2) > 1e-9 {
		t.Fatalf("multiplier = %v, want 1.2", player.ComboMultiplier)
	}
	if got := ComboMultiplier(500, 1); got != world.MaxComboMultiplier {
		t.Fatalf("multiplier cap = %v", got)
	}
	TickCombo(player, ComboWindowMs)
	if player.Combo != 0 || player.ComboMultiplier != 1 {
		t.Fatalf("combo should reset after window, got %d/%v", player.Combo, player.ComboMultiplier)
	}
}

func TestRollLootAndRemoveDead(t *testing.T) {
	e := enemy(1, world.ArchetypeBoss, 0, 0)
	loot := RollLoot(e, rng.NewScripted(0.9))
	if loot.Gold != 100 || loot.Experience != e.Experience {
		t.Fatalf("loot = %+v", loot)
	}
	alive := enemy(2, world.ArchetypeNormal, 0, 0)
	e.Health = 0
	kept := RemoveDead([]*world.Enemy{e, alive})
	if len(kept) != 1 || kept[0] != alive {
		t.Fatalf("RemoveDead kept %v", kept)
	}
	if KillScore(3) != 25 {
		t.Fatalf("kill score for layer 3 = %d", KillScore(3))
	}
}
