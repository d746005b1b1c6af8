package model

type Airport struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}
