package settings

import (
	"bytes"
	"os"
	"text/template"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/pkg/errors"
)

// ITemplateProvider defines config template logic.
type ITemplateProvider interface {
	Process([]byte) ([]byte, error)
}

// Template engine provider.
type provider struct {
	logger    common.ILoggerProvider
	functions template.FuncMap
}

// Contains data required for a new template.
type constructTemplate struct {
	Secrets providers.ISecretProvider
	Logger  common.ILoggerProvider
}

// Constructs a new template engine.
func newTemplateProvider(ctor *constructTemplate) *provider {
	p := &provider{
		logger: ctor.Logger,
	}

	p.functions = template.FuncMap{
		"env": p.getEnvVariable,
	}

	if nil != ctor.Secrets {
		p.functions["sec"] = ctor.Secrets.Get
	}

	return p
}

// Process applies template functions to the raw config file.
// Allows reading values from environment variables and secrets store.
func (p *provider) Process(rawFile []byte) ([]byte, error) {
	tpl, err := template.New("wled-effects").Funcs(p.functions).Parse(string(rawFile))
	if err != nil {
		return nil, errors.Wrap(err, "parse template")
	}

	b := bytes.Buffer{}
	if err = tpl.Execute(&b, nil); err != nil {
		return nil, errors.Wrap(err, "execute template")
	}

	return b.Bytes(), nil
}

// Returns environment variable.
func (p *provider) getEnvVariable(name string) string {
	p.logger.Debug("Template is requesting environment variable",
		"variable", name, common.LogSystemToken, logSystem)
	return os.Getenv(name)
}
