package catalog

import "cpi-scraper/models"

// HotelSheetName is the worksheet hotel prices are written to.
const HotelSheetName = "Hotel Prices"

// defaultHotels is the tracked Doha hotel basket. The Arabic name labels the
// workbook row; the English name is what the booking site is searched with.
// Properties listed under their English name only carry it in both fields.
var defaultHotels = []models.Hotel{
	{NameAr: "فندق فور سيزونز الدوحة", NameEn: "Four Seasons Hotel Doha"},
	{NameAr: "فندق جراند حياة الدوحة", NameEn: "Grand Hyatt Doha"},
	{NameAr: "فندق إنتركونتيننتال الدوحة", NameEn: "InterContinental Doha"},
	{NameAr: "فندق ماريوت الدوحة", NameEn: "Marriott Doha"},
	{NameAr: "فندق ومنتجع شيراتون الدوحة", NameEn: "Sheraton Grand Doha Resort"},
	{NameAr: "فندق كونكورد الدوحة", NameEn: "Concorde Hotel Doha"},
	{NameAr: "فندق جراند ميركيور سيتى سنتر الدوحة", NameEn: "Grand Mercure Doha City Centre"},
	{NameAr: "فندق رويال قطر", NameEn: "Royal Qatar Hotel"},
	{NameAr: "فندق ريتاج الريان", NameEn: "Retaj Al Rayan Hotel"},
	{NameAr: "فندق راديسون بلو بروت مان", NameEn: "Radisson Blu Hotel Doha"},
	{NameAr: "فندق موفنبيك الدوحة", NameEn: "Mövenpick Hotel Doha"},
	{NameAr: "فنادق إزدان الدوحة", NameEn: "Ezdan Hotels Doha"},
	{NameAr: "فندق لي بارك", NameEn: "Le Park Hotel"},
	{NameAr: "فندق و اجنحة سراي مشيرب", NameEn: "Saray Msheireb Hotel"},
	{NameAr: "اجنحة الليوان الفندقية", NameEn: "Liwan Hotel Suites"},
	{NameAr: "المنصور سويت هوتيل", NameEn: "Al Mansour Suites Hotel"},
	{NameAr: "Gulf Pearl Hotel Apartments", NameEn: "Gulf Pearl Hotel Apartments"},
	{NameAr: "Mathema Premium Aparthotel", NameEn: "Mathema Premium Aparthotel"},
	{NameAr: "فندق البستان", NameEn: "Al Bustan Hotel"},
	{NameAr: "فندق المنتزه بلازا", NameEn: "Al Muntazah Plaza Hotel"},
	{NameAr: "فندق مشيرب", NameEn: "Msheireb Hotel"},
	{NameAr: "فندق جراند قطر بالاس", NameEn: "Grand Qatar Palace Hotel"},
	{NameAr: "فندق جراند سويت", NameEn: "Grand Suite Hotel"},
	{NameAr: "فندق قصر لا فيلا", NameEn: "La Villa Palace Hotel"},
	{NameAr: "رتاج ريزيدنس السد", NameEn: "Retaj Residence Al Sadd"},
	{NameAr: "الصفا للاجنحة الملكية", NameEn: "Al Safa Royal Suites"},
	{NameAr: "ازدان للاجنحة الفندقية", NameEn: "Ezdan Hotel Suites"},
	{NameAr: "أجنحة المدينة الدوحة", NameEn: "Madinat Doha Suites"},
	{NameAr: "المنصور بارك إن فندق وشقق فندقية", NameEn: "Park Inn by Radisson Al Mansour"},
	{NameAr: "فندق السد سويتس", NameEn: "Al Sadd Suites Hotel"},
	{NameAr: "وايت مون ريزيدنس", NameEn: "White Moon Residence"},
	{NameAr: "TGI Residence", NameEn: "TGI Residence"},
	{NameAr: "حياة ريزدنسز دوحة ويست باي", NameEn: "Hyatt Residences Doha West Bay"},
}

// DefaultHotels returns a copy of the built-in hotel list.
func DefaultHotels() []models.Hotel {
	hotels := make([]models.Hotel, len(defaultHotels))
	copy(hotels, defaultHotels)
	return hotels
}
