package sales

import (
	"fmt"
	"strings"

	"github.com/nibzard/prospector/internal/leads"
)

const salesTeamLeadInstructions = `Eres el Líder del Equipo de Ventas responsable de gestionar el flujo de trabajo de ventas.
Tu trabajo es:
1. Recibir información del lead (nombre y URL de LinkedIn)
2. Decidir a qué miembro del equipo asignar tareas
3. Coordinar el proceso general

Si no hay un perfil de usuario más allá del nombre y la URL de LinkedIn, primero debes instruir al Representante de Desarrollo de Ventas para extraer el perfil de LinkedIn.
Después de que la información del usuario haya sido completada, instruye al agente Especialista en Emails Fríos para que redacte un correo electrónico personalizado.

Cuando tengas el correo final, responde con el correo entre dos líneas "---", con la línea "Asunto: <asunto>" al comienzo.`

const salesDevelopmentRepInstructions = `Eres un Representante de Desarrollo de Ventas responsable de investigar leads.
Tu trabajo es extraer información del perfil de LinkedIn.

Utiliza la herramienta extract_linkedin_profile para obtener datos del perfil

No haces nada más que usar la herramienta que se te ha proporcionado.

Una vez que hayas terminado tu trabajo, debes avisar a tu agente supervisor usando una herramienta.`

const salesDevelopmentRepSearchInstructions = `Eres un Representante de Desarrollo de Ventas responsable de investigar leads mediante búsqueda web.
Tu trabajo es encontrar información profesional sobre los leads.

Utiliza la herramienta research_lead_with_tavily para recopilar información sobre el lead
desde varias fuentes web. Buscará en la web información y la formateará
en un perfil profesional.

No haces nada más que usar la herramienta que se te ha proporcionado.

Una vez que hayas terminado tu investigación, debes avisar a tu agente supervisor usando una herramienta.`

const coldEmailSpecialistInstructions = `Eres un Especialista en Emails Fríos responsable de redactar correos electrónicos de prospección altamente personalizados y efectivos.

Utiliza la herramienta generate_email para redactar el correo a partir del perfil del lead.

Una vez que hayas terminado tu trabajo, debes avisar a tu agente supervisor usando una herramienta.`

const emailSystemPrompt = "Eres un experto en escribir correos electrónicos de ventas personalizados. Escribe un correo electrónico conciso y persuasivo que conecte con los antecedentes e intereses del prospecto."

// Sender describes who the cold emails are written on behalf of.
type Sender struct {
	Name           string
	Company        string
	CompanyContext string
}

// DefaultSender is the sender used when none is configured.
var DefaultSender = Sender{
	Name:    "Pedro Cisternas",
	Company: "Ficticia Inc",
	CompanyContext: `Ficticia Inc es una empresa líder en soluciones de inteligencia artificial que está revolucionando la forma en que las empresas analizan y utilizan sus datos. Nuestra tecnología avanzada permite a las organizaciones automatizar procesos complejos, mejorar la toma de decisiones y descubrir nuevas oportunidades de negocio. Nos especializamos en:

1. Análisis predictivo impulsado por IA
2. Automatización de procesos empresariales
3. Integración de IA en sistemas existentes para optimizar operaciones
4. Creación de sistemas multi-agente para automatizar procesos de ventas y marketing`,
}

func (s Sender) withDefaults() Sender {
	if s.Name == "" {
		s.Name = DefaultSender.Name
	}
	if s.Company == "" {
		s.Company = DefaultSender.Company
	}
	if s.CompanyContext == "" {
		s.CompanyContext = DefaultSender.CompanyContext
	}
	return s
}

func emailPrompt(name, profileJSON string, sender Sender) string {
	var b strings.Builder
	b.WriteString("INFORMACIÓN DEL DESTINATARIO:\n\n")
	fmt.Fprintf(&b, "%s\n\n%s\n\n", name, profileJSON)
	b.WriteString("DETALLES DEL CORREO ELECTRÓNICO:\n")
	fmt.Fprintf(&b, "- Nombre del Remitente: %s\n", sender.Name)
	fmt.Fprintf(&b, "- Empresa del Remitente: %s\n\n", sender.Company)
	fmt.Fprintf(&b, "CONTEXTO DE LA EMPRESA: %s\n\n", sender.CompanyContext)
	b.WriteString(`Directrices:
- Mantén el correo electrónico conciso (1 párrafo)
- Escribe como Josh Braun (ilumina un problema que el prospecto podría no conocer)
- Sin jergas, sin pitch duro, solo despierta interés
- Personaliza según los antecedentes del destinatario, pero sin ser invasivo
- Concéntrate en despertar curiosidad en lugar de vender
- Empieza con una línea "Asunto: <asunto>"`)
	return b.String()
}

// Input returns the message that starts the team's run for a lead.
func Input(lead leads.Lead) string {
	return fmt.Sprintf("Tenemos un nuevo lead: %s (%s). Por favor, coordina el proceso para investigar este lead y crear un correo electrónico de prospección personalizado.",
		lead.Name, lead.LinkedInURL)
}
