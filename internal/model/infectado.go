package model

import "time"

// GeoPointType はGeoJSONのPoint型を表す。
const GeoPointType = "Point"

// GeoPoint はGeoJSON形式の地点。Coordinatesは[経度, 緯度]の順に保持する。
type GeoPoint struct {
	Type        string
	Coordinates [2]float64
}

// NewGeoPoint は緯度・経度からGeoPointを生成する。格納順は経度が先。
func NewGeoPoint(latitude, longitude float64) GeoPoint {
	return GeoPoint{
		Type:        GeoPointType,
		Coordinates: [2]float64{longitude, latitude},
	}
}

// Longitude は経度を返す。
func (p GeoPoint) Longitude() float64 {
	return p.Coordinates[0]
}

// Latitude は緯度を返す。
func (p GeoPoint) Latitude() float64 {
	return p.Coordinates[1]
}

// Infectado は感染者レコードを表す。
// IDはストアが初回挿入時に採番し、以後変わらない。
type Infectado struct {
	ID             string
	DataNascimento time.Time
	Sexo           string
	Localizacao    GeoPoint
}

// NewInfectado はIDを持たない感染者レコードを生成する（新規登録用）。
func NewInfectado(dataNascimento time.Time, sexo string, latitude, longitude float64) *Infectado {
	return &Infectado{
		DataNascimento: normalizeDate(dataNascimento),
		Sexo:           sexo,
		Localizacao:    NewGeoPoint(latitude, longitude),
	}
}

// NewInfectadoWithID は呼び出し元が指定したIDを持つ感染者レコードを生成する（更新用）。
func NewInfectadoWithID(id string, dataNascimento time.Time, sexo string, latitude, longitude float64) *Infectado {
	i := NewInfectado(dataNascimento, sexo, latitude, longitude)
	i.ID = id
	return i
}

// normalizeDate はBSON日付の精度（UTC・ミリ秒）に揃える。
func normalizeDate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
