package configinfo

type Core interface {
	PaypalClientId() string
}
