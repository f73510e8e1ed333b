package dto

// Response 统一返回结构，HTTP 状态码恒为 200，业务结果看 Code
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}
