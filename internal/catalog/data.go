package catalog

// Reference data. Prices are approximate street prices in USD; a zero price
// marks parts that are not sold separately (integrated graphics).
// Lookups rank by match length, so family members may appear in any order.

var cpuEntries = []Entry{
	// very_high
	{Name: "Ryzen 7 9800X3D", Tier: TierVeryHigh, GamingScore: 98, ReleaseYear: 2024, MSRP: 479, Price: 479},
	{Name: "Ryzen 9 7950X3D", Tier: TierVeryHigh, GamingScore: 96, ReleaseYear: 2023, MSRP: 699, Price: 599},
	{Name: "Ryzen 7 7800X3D", Tier: TierVeryHigh, GamingScore: 95, ReleaseYear: 2023, MSRP: 449, Price: 399},
	{Name: "Core i9-14900K", Tier: TierVeryHigh, GamingScore: 93, ReleaseYear: 2023, MSRP: 589, Price: 439},
	{Name: "Core Ultra 9 285K", Tier: TierVeryHigh, GamingScore: 92, ReleaseYear: 2024, MSRP: 589, Price: 579},
	{Name: "Core i9-13900K", Tier: TierVeryHigh, GamingScore: 91, ReleaseYear: 2022, MSRP: 589, Price: 409},

	// high
	{Name: "Core i7-14700K", Tier: TierHigh, GamingScore: 90, ReleaseYear: 2023, MSRP: 409, Price: 349},
	{Name: "Core i7-13700K", Tier: TierHigh, GamingScore: 88, ReleaseYear: 2022, MSRP: 409, Price: 319},
	{Name: "Ryzen 7 7700X", Tier: TierHigh, GamingScore: 86, ReleaseYear: 2022, MSRP: 399, Price: 279},
	{Name: "Core i5-14600K", Tier: TierHigh, GamingScore: 86, ReleaseYear: 2023, MSRP: 319, Price: 249},
	{Name: "Core i5-13600K", Tier: TierHigh, GamingScore: 85, ReleaseYear: 2022, MSRP: 319, Price: 229},
	{Name: "Ryzen 7 5800X3D", Tier: TierHigh, GamingScore: 84, ReleaseYear: 2022, MSRP: 449, Price: 299},
	{Name: "Ryzen 5 7600X", Tier: TierHigh, GamingScore: 82, ReleaseYear: 2022, MSRP: 299, Price: 199},
	{Name: "Ryzen 5 7600", Tier: TierHigh, GamingScore: 80, ReleaseYear: 2023, MSRP: 229, Price: 179},

	// mid
	{Name: "Ryzen 7 5700X", Tier: TierMid, GamingScore: 72, ReleaseYear: 2022, MSRP: 299, Price: 149},
	{Name: "Ryzen 5 5600X", Tier: TierMid, GamingScore: 70, ReleaseYear: 2020, MSRP: 299, Price: 139},
	{Name: "Core i5-12400F", Tier: TierMid, GamingScore: 70, ReleaseYear: 2022, MSRP: 182, Price: 119},
	{Name: "Core i5-12400", Tier: TierMid, GamingScore: 69, ReleaseYear: 2022, MSRP: 192, Price: 129},
	{Name: "Ryzen 5 5600", Tier: TierMid, GamingScore: 68, ReleaseYear: 2022, MSRP: 199, Price: 119},
	{Name: "Core i5-11400F", Tier: TierMid, GamingScore: 60, ReleaseYear: 2021, MSRP: 157, Price: 99},
	{Name: "Ryzen 5 3600", Tier: TierMid, GamingScore: 58, ReleaseYear: 2019, MSRP: 199, Price: 85},

	// low
	{Name: "Core i7-8700K", Tier: TierLow, GamingScore: 55, ReleaseYear: 2017, MSRP: 359, Price: 120},
	{Name: "Core i5-9400F", Tier: TierLow, GamingScore: 48, ReleaseYear: 2019, MSRP: 182, Price: 70},
	{Name: "Ryzen 5 2600", Tier: TierLow, GamingScore: 45, ReleaseYear: 2018, MSRP: 199, Price: 60},
	{Name: "Core i3-10100F", Tier: TierLow, GamingScore: 42, ReleaseYear: 2020, MSRP: 97, Price: 65},

	// very_low
	{Name: "Core i7-4790K", Tier: TierVeryLow, GamingScore: 33, ReleaseYear: 2014, MSRP: 339, Price: 50},
	{Name: "Core i5-4460", Tier: TierVeryLow, GamingScore: 25, ReleaseYear: 2014, MSRP: 182, Price: 25},
	{Name: "Ryzen 3 1200", Tier: TierVeryLow, GamingScore: 22, ReleaseYear: 2017, MSRP: 109, Price: 35},
	{Name: "FX-8350", Tier: TierVeryLow, GamingScore: 18, ReleaseYear: 2012, MSRP: 199, Price: 40},
}

var gpuEntries = []Entry{
	// very_high
	{Name: "GeForce RTX 5090", Tier: TierVeryHigh, GamingScore: 100, ReleaseYear: 2025, MSRP: 1999, Price: 2399},
	{Name: "GeForce RTX 4090", Tier: TierVeryHigh, GamingScore: 97, ReleaseYear: 2022, MSRP: 1599, Price: 1799},
	{Name: "GeForce RTX 4080 Super", Tier: TierVeryHigh, GamingScore: 90, ReleaseYear: 2024, MSRP: 999, Price: 999},
	{Name: "Radeon RX 7900 XTX", Tier: TierVeryHigh, GamingScore: 89, ReleaseYear: 2022, MSRP: 999, Price: 899},
	{Name: "GeForce RTX 4080", Tier: TierVeryHigh, GamingScore: 88, ReleaseYear: 2022, MSRP: 1199, Price: 1049},

	// high
	{Name: "Radeon RX 7900 XT", Tier: TierHigh, GamingScore: 82, ReleaseYear: 2022, MSRP: 899, Price: 649},
	{Name: "GeForce RTX 4070 Ti Super", Tier: TierHigh, GamingScore: 80, ReleaseYear: 2024, MSRP: 799, Price: 779},
	{Name: "GeForce RTX 4070 Ti", Tier: TierHigh, GamingScore: 77, ReleaseYear: 2023, MSRP: 799, Price: 729},
	{Name: "GeForce RTX 4070 Super", Tier: TierHigh, GamingScore: 75, ReleaseYear: 2024, MSRP: 599, Price: 589},
	{Name: "Radeon RX 7800 XT", Tier: TierHigh, GamingScore: 72, ReleaseYear: 2023, MSRP: 499, Price: 479},
	{Name: "GeForce RTX 3080", Tier: TierHigh, GamingScore: 72, ReleaseYear: 2020, MSRP: 699, Price: 449},
	{Name: "GeForce RTX 4070", Tier: TierHigh, GamingScore: 70, ReleaseYear: 2023, MSRP: 599, Price: 529},

	// mid
	{Name: "GeForce RTX 4060 Ti", Tier: TierMid, GamingScore: 60, ReleaseYear: 2023, MSRP: 399, Price: 379},
	{Name: "Radeon RX 6700 XT", Tier: TierMid, GamingScore: 58, ReleaseYear: 2021, MSRP: 479, Price: 299},
	{Name: "GeForce RTX 3060 Ti", Tier: TierMid, GamingScore: 57, ReleaseYear: 2020, MSRP: 399, Price: 299},
	{Name: "GeForce RTX 4060", Tier: TierMid, GamingScore: 54, ReleaseYear: 2023, MSRP: 299, Price: 289},
	{Name: "Radeon RX 7600", Tier: TierMid, GamingScore: 52, ReleaseYear: 2023, MSRP: 269, Price: 249},
	{Name: "GeForce RTX 3060", Tier: TierMid, GamingScore: 50, ReleaseYear: 2021, MSRP: 329, Price: 269},
	{Name: "Arc A750", Tier: TierMid, GamingScore: 47, ReleaseYear: 2022, MSRP: 289, Price: 189},
	{Name: "Radeon RX 6600", Tier: TierMid, GamingScore: 45, ReleaseYear: 2021, MSRP: 329, Price: 199},

	// low
	{Name: "GeForce GTX 1660 Super", Tier: TierLow, GamingScore: 35, ReleaseYear: 2019, MSRP: 229, Price: 160},
	{Name: "GeForce GTX 1070", Tier: TierLow, GamingScore: 33, ReleaseYear: 2016, MSRP: 379, Price: 120},
	{Name: "GeForce GTX 1660", Tier: TierLow, GamingScore: 32, ReleaseYear: 2019, MSRP: 219, Price: 150},
	{Name: "Radeon RX 580", Tier: TierLow, GamingScore: 28, ReleaseYear: 2017, MSRP: 229, Price: 90},
	{Name: "GeForce GTX 1650", Tier: TierLow, GamingScore: 24, ReleaseYear: 2019, MSRP: 149, Price: 140},

	// very_low
	{Name: "GeForce GTX 1050 Ti", Tier: TierVeryLow, GamingScore: 16, ReleaseYear: 2016, MSRP: 139, Price: 90},
	{Name: "GeForce GTX 960", Tier: TierVeryLow, GamingScore: 14, ReleaseYear: 2015, MSRP: 199, Price: 50},
	{Name: "Radeon Graphics", Tier: TierVeryLow, GamingScore: 8, ReleaseYear: 2022, MSRP: 0, Price: 0},
	{Name: "UHD Graphics", Tier: TierVeryLow, GamingScore: 5, ReleaseYear: 2021, MSRP: 0, Price: 0},
}

var (
	defaultCPUs = New(cpuEntries...)
	defaultGPUs = New(gpuEntries...)
)

// DefaultCPUs returns the built-in CPU catalog.
func DefaultCPUs() *Catalog { return defaultCPUs }

// DefaultGPUs returns the built-in GPU catalog.
func DefaultGPUs() *Catalog { return defaultGPUs }
