package availability

import "prenota/internal/model"

func defaultDurations() []model.DurationRule {
	return []model.DurationRule{
		{ID: "dur-1", MinGuests: 1, MaxGuests: 2, DurationMinutes: 90},
		{ID: "dur-2", MinGuests: 3, MaxGuests: 4, DurationMinutes: 120},
		{ID: "dur-3", MinGuests: 5, MaxGuests: 100, DurationMinutes: 150},
	}
}

func twoFourTops() *model.Settings {
	return &model.Settings{
		Mode: model.ModeAdvanced,
		Tables: []model.Table{
			{ID: "T1", Name: "Tavolo 1", Capacity: 4, Combinable: true},
			{ID: "T2", Name: "Tavolo 2", Capacity: 4, Combinable: true},
		},
		CombinationRules: []model.CombinationRule{
			{ID: "rule-1", Count: 2, TableCapacity: 4, NewCapacity: 6},
		},
		DurationRules:    defaultDurations(),
		MaxGuestsPerSlot: 30,
	}
}

func confirmed(id, date, at string, adults int, tables ...string) model.Booking {
	return model.Booking{
		ID:               id,
		Date:             date,
		Time:             at,
		Adults:           adults,
		Status:           model.StatusConfirmed,
		AssignedTableIDs: tables,
	}
}

func clock(s string) model.Clock {
	c, err := model.ParseClock("time", s)
	if err != nil {
		panic(err)
	}
	return c
}
