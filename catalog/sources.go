package catalog

import "cpi-scraper/models"

// Source IDs are the stable keys the per-source scrapers are registered
// under. The CPI source code is not unique (several aggregators share
// AIRL028) so it cannot serve as the lookup key.
const (
	SourceQatarAirways   = "qatar-airways"
	SourceBritishAirways = "british-airways"
	SourceMalaysia       = "malaysia-airlines"
	SourceKuwaitAirways  = "kuwait-airways"
	SourceTurkish        = "turkish-airlines"
	SourcePIA            = "pia"
	SourceCheapAir       = "cheapair"
	SourceEDreams        = "edreams"
	SourceKayak          = "kayak"
	SourceITAMatrix      = "ita-matrix"
)

var defaultSources = []models.Source{
	{ID: SourceQatarAirways, Name: "Qatar Airways", NameAr: "الخطوط القطرية", SourceCode: "AIRL001", Kind: models.KindAirline},
	{ID: SourceBritishAirways, Name: "British Airways", NameAr: "الخطوط البريطانية", SourceCode: "AIRL018", Kind: models.KindAirline},
	{ID: SourceMalaysia, Name: "Malaysia Airlines", NameAr: "الخطوط الماليزية", SourceCode: "AIRL024", Kind: models.KindAirline},
	{ID: SourceKuwaitAirways, Name: "Kuwait Airways", NameAr: "الخطوط الكويتية", SourceCode: "AIRL025", Kind: models.KindAirline},
	{ID: SourceTurkish, Name: "Turkish Airlines", NameAr: "الخطوط التركية", SourceCode: "AIRL026", Kind: models.KindAirline},
	{ID: SourcePIA, Name: "Pakistan International Airlines", NameAr: "الخطوط الباكستانية", SourceCode: "AIRL020", Kind: models.KindAirline},
	{ID: SourceCheapAir, Name: "CheapAir", NameAr: "cheapair", SourceCode: "AIRL028", Kind: models.KindAggregator},
	{ID: SourceEDreams, Name: "eDreams", NameAr: "edreams", SourceCode: "AIRL030", Kind: models.KindAggregator},
	{ID: SourceKayak, Name: "KAYAK", NameAr: "Kayak", SourceCode: "AIRL028", Kind: models.KindAggregator},
	{ID: SourceITAMatrix, Name: "ITA Matrix", NameAr: "matrix", SourceCode: "AIRL028", Kind: models.KindAggregator},
}

// DefaultSources returns a copy of the static source list.
func DefaultSources() []models.Source {
	sources := make([]models.Source, len(defaultSources))
	copy(sources, defaultSources)
	return sources
}
