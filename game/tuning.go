package game

const (
	TankSize          = 40.0
	TankMaxHealth     = 100
	Deadzone          = 0.08
	AccelPerTick      = 0.6
	DampingDiv        = 1.12
	MaxSpeed          = 6.0
	SpawnMargin       = 100.0
	BulletSize        = 8.0
	BulletSpeed       = 14.0
	BulletTTLTicks    = 90 // 1.5s at 60Hz
	BulletDamage      = 25
	FireCooldownTicks = 12
	ReloadTicks       = 45 // one round back per reload period
)
