package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// ExchangeInfos reads exchange descriptions from <dir>/<source>.yaml files.
type ExchangeInfos struct {
	reader infoReader
}

// NewExchangeInfos reads the exchange info files of dir.
func NewExchangeInfos(dir string) *ExchangeInfos {
	return &ExchangeInfos{reader: infoReaderFromDisk{dir}}
}

// Load reads the description of one exchange. A missing file is reported with ok false and no
// error; an unreadable or malformed one is an error.
func (infos *ExchangeInfos) Load(source string) (exchange Exchange, ok bool, err error) {
	if strings.ContainsAny(source, `/\`) || source == "." || source == ".." {
		return Exchange{}, false, fmt.Errorf("exchange source %q is not a valid file name", source)
	}

	data, err := infos.reader.Read(source)
	if os.IsNotExist(err) {
		return Exchange{}, false, nil
	}
	if err != nil {
		return Exchange{}, false, err
	}

	if err := yaml.Unmarshal(data, &exchange); err != nil {
		return Exchange{}, false, fmt.Errorf("error parsing yaml for exchange %s: %v", source, err)
	}
	if errs := exchange.validate(source, nil); len(errs) > 0 {
		return Exchange{}, false, errs[0]
	}
	return exchange, !exchange.Disabled, nil
}

type infoReader interface {
	Read(source string) ([]byte, error)
}

type infoReaderFromDisk struct {
	path string
}

func (r infoReaderFromDisk) Read(source string) ([]byte, error) {
	return os.ReadFile(filepath.Join(r.path, source+".yaml"))
}
