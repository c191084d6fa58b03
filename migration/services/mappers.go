package services

// mappers is the registry of per-table mapping routines. Tables without
// an entry here are ignored by the orchestrator.
var mappers = []TableMapper{
	peopleMapper{},
	communicationsMapper{},
	ministriesMapper{},
	activitiesMapper{},
	schedulesMapper{},
	roomsMapper{},
	groupsMapper{},
	attendanceMapper{},
	staffingMapper{},
	batchesMapper{},
	contributionsMapper{},
}

func mapperFor(table string) (TableMapper, bool) {
	for _, m := range mappers {
		if m.Table() == table {
			return m, true
		}
	}
	return nil, false
}
