package dashboard

import "github.com/Joeboy77/drug-guard-fe/drugguard"

// Sample data shown in place of a section that could not be loaded. Each
// call returns a fresh copy.

func FallbackOverview() drugguard.OverviewStats {
	return drugguard.OverviewStats{
		TotalDrugs:       150,
		ActiveDrugs:      120,
		TotalScans:       1500,
		TotalAdmins:      5,
		RecentScans:      85,
		RecentDrugsAdded: 12,
		DrugsByStatus: map[string]int64{
			"ACTIVE":    120,
			"RECALLED":  15,
			"EXPIRED":   10,
			"SUSPENDED": 5,
		},
		DrugsExpiringSoon:       8,
		VerificationSuccessRate: 94.5,
	}
}

func FallbackDrugAnalytics() drugguard.DrugAnalytics {
	return drugguard.DrugAnalytics{
		CategoryDistribution: map[string]int64{
			"Antibiotics":  25,
			"Painkillers":  18,
			"Vitamins":     12,
			"Anti-malaria": 20,
			"Other":        15,
		},
		TopManufacturers: map[string]int64{
			"PharmaCorp Ghana": 30,
			"MedLife Ltd":      25,
			"HealthFirst":      20,
			"Universal Pharma": 15,
			"Other":            10,
		},
		ExpiryAnalysis: drugguard.ExpiryAnalysis{
			Expired:        10,
			Expiring30Days: 8,
			Expiring90Days: 25,
		},
		CreationTimeline: []drugguard.MonthCount{},
	}
}

func FallbackScanAnalytics() drugguard.ScanAnalytics {
	return drugguard.ScanAnalytics{
		TotalScans:      1500,
		AuthenticScans:  1420,
		FraudulentScans: 80,
		DailyTrend:      []drugguard.DailyScans{},
		TopScannedDrugs: []drugguard.DrugScanCount{
			{DrugName: "Paracetamol 500mg", ScanCount: 45},
			{DrugName: "Amoxicillin 250mg", ScanCount: 38},
			{DrugName: "Ibuprofen 400mg", ScanCount: 32},
		},
		HourlyDistribution: map[int]int64{},
	}
}
