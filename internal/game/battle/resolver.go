package battle

const (
	// MaxStat is the upper bound of hunger, happiness and health.
	MaxStat = 100
	// StartingHealth is the health each side begins a battle with.
	StartingHealth = 100

	baseAttack  = 20
	baseDefense = 10

	// MinDamage is dealt by every attack regardless of the stat differential.
	MinDamage = 5
)

// stageDamageCap is the per-stage ceiling on a single attack, indexed by the
// attacker's stage.
var stageDamageCap = [...]int{20, 30, 50, 80}

// MaxDamage returns the damage ceiling for an attacker of the given stage.
// Unknown stages fall back to the Egg ceiling.
//
// Postcondition: Returns one of 20, 30, 50, 80.
func MaxDamage(s Stage) int {
	if !s.Valid() {
		return stageDamageCap[StageEgg]
	}
	return stageDamageCap[s]
}

// AttackPower computes base(20) + floor((100-hunger)/2) + floor(happiness/4) + stage*5.
//
// Postcondition: Returns >= 20.
func AttackPower(c Combatant) int {
	c = c.Normalized()
	return baseAttack + (MaxStat-c.Hunger)/2 + c.Happiness/4 + int(c.Stage)*5
}

// DefensePower computes base(10) + floor(happiness/5) + stage*3.
//
// Postcondition: Returns >= 10.
func DefensePower(c Combatant) int {
	c = c.Normalized()
	return baseDefense + c.Happiness/5 + int(c.Stage)*3
}

// Strike is the full breakdown of one attack.
type Strike struct {
	AttackPower  int `json:"atk"`
	DefensePower int `json:"def"`
	// Raw is AttackPower - DefensePower before clamping; may be negative.
	Raw    int `json:"raw"`
	Damage int `json:"damage"`
}

// ResolveStrike computes the attack breakdown of attacker against defender.
// The damage is Raw clamped into [MinDamage, MaxDamage(attacker.Stage)].
//
// Postcondition: MinDamage <= Damage <= MaxDamage(attacker.Normalized().Stage).
func ResolveStrike(attacker, defender Combatant) Strike {
	atk := AttackPower(attacker)
	def := DefensePower(defender)
	raw := atk - def
	return Strike{
		AttackPower:  atk,
		DefensePower: def,
		Raw:          raw,
		Damage:       clamp(raw, MinDamage, MaxDamage(attacker.Normalized().Stage)),
	}
}

// Damage returns the damage attacker deals to defender in one turn.
func Damage(attacker, defender Combatant) int {
	return ResolveStrike(attacker, defender).Damage
}
