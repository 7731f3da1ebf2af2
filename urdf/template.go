package urdf

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"text/template"
)

const urdfTemplate = `<?xml version="1.0" ?>
<robot name="{{ xml .Name }}">
  <link name="baseLink">
    <contact>
      <friction_anchor/>
      <lateral_friction value="{{ num .LateralFriction }}"/>
      <spinning_friction value="{{ num .SpinningFriction }}"/>
      <rolling_friction value="{{ num .RollingFriction }}"/>
      <contact_cfm value="{{ num .ContactCFM }}"/>
      <contact_erp value="{{ num .ContactERP }}"/>
    </contact>
    <inertial>
      <origin rpy="0 0 0" xyz="0 0 0"/>
      <mass value="{{ num .Mass }}"/>
      <inertia ixx="{{ num .Inertia }}" ixy="0" ixz="0" iyy="{{ num .Inertia }}" iyz="0" izz="{{ num .Inertia }}"/>
    </inertial>
    <visual>
      <origin rpy="0 0 0" xyz="0 0 0"/>
      <geometry>
        <mesh filename="{{ xml .MeshPath }}" scale="1 1 1"/>
      </geometry>
      <material name="white">
        <color rgba="1 1 1 1"/>
      </material>
    </visual>
    <collision>
      <origin rpy="0 0 0" xyz="0 0 0"/>
      <geometry>
        <mesh filename="{{ xml .MeshPath }}" scale="1 1 1"/>
      </geometry>
    </collision>
  </link>
</robot>
`

var tmpl = template.Must(template.New("urdf").Funcs(template.FuncMap{
	"num": func(v float64) string {
		return strconv.FormatFloat(v, 'g', -1, 64)
	},
	"xml": func(s string) (string, error) {
		var b strings.Builder
		if err := xml.EscapeText(&b, []byte(s)); err != nil {
			return "", err
		}
		return b.String(), nil
	},
}).Parse(urdfTemplate))

type templateData struct {
	Name string
	Params
}

// Render writes the robot description of name to w.
func Render(w io.Writer, name string, p Params) error {
	return tmpl.Execute(w, templateData{Name: name, Params: p})
}
