package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("snowflakeid", validSnowflakeID)
	}
}

// validSnowflakeID accepts the decimal form of a generated identifier.
func validSnowflakeID(fl validator.FieldLevel) bool {
	_, err := snowflake.ParseString(fl.Field().String())
	return err == nil
}
