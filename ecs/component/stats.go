package component

// Stats is the game state pickup effects act on.
type Stats struct {
	Health    int
	MaxHealth int
	Armour    int
	MaxArmour int
	Money     int
	Score     int
}

var StatsComponent = NewComponent[Stats]()

// Inventory maps weapon ids to carried ammo.
type Inventory struct {
	Weapons map[int]int
}

// Give adds ammo for weapon, creating the slot on first pickup.
func (inv *Inventory) Give(weapon, ammo int) {
	if inv.Weapons == nil {
		inv.Weapons = make(map[int]int)
	}
	inv.Weapons[weapon] += ammo
}

var InventoryComponent = NewComponent[Inventory]()
